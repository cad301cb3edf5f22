// Command scan runs one-shot extraction over text from the command
// line or stdin. Useful for debugging directional patterns before
// configuring them for an app.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mtkohut/spendwatch/pkg/api"
	"github.com/mtkohut/spendwatch/pkg/extract"
	"github.com/mtkohut/spendwatch/pkg/logging"
)

func main() {
	code := flag.String("currency", "USD", "local currency code")
	symbol := flag.String("symbol", "$", "local currency symbol")
	decimals := flag.Int("decimals", 2, "local currency decimal places")
	expense := flag.String("expense", "", "expense pattern to try")
	income := flag.String("income", "", "income pattern to try")
	flag.Parse()

	logger := logging.Setup(logging.FromEnv())

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan: reading stdin: %v\n", err)
			os.Exit(1)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "scan: no input text; pass it as arguments or on stdin")
		os.Exit(2)
	}

	engine := extract.New(logger)
	outcome := engine.Extract(context.Background(), extract.Request{
		Text: text,
		LocalCurrency: api.Currency{
			Code:          *code,
			Symbol:        *symbol,
			DecimalPlaces: decimals,
		},
		ExpensePattern: *expense,
		IncomePattern:  *income,
	})

	report := map[string]any{
		"outcome": outcomeName(outcome.Kind),
	}
	if outcome.Kind == extract.KindMatched {
		report["amount"] = outcome.Result.Amount.String()
		report["is_expense"] = outcome.Result.IsExpense()
		report["direction"] = directionName(outcome.Result.Direction)
		if outcome.Result.Currency != nil {
			report["currency"] = outcome.Result.Currency.Code
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "scan: %v\n", err)
		os.Exit(1)
	}
}

func outcomeName(kind extract.OutcomeKind) string {
	switch kind {
	case extract.KindMatched:
		return "matched"
	case extract.KindUngated:
		return "ungated"
	default:
		return "no_match"
	}
}

func directionName(dir extract.Direction) string {
	switch dir {
	case extract.DirectionExpense:
		return "expense"
	case extract.DirectionIncome:
		return "income"
	default:
		return "unknown"
	}
}
