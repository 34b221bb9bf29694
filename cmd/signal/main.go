// The signal binary processes instructions from the command line or a
// batch file and prints the calculated levels.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tradeoracle/signal-bot/cmd/common"
	"github.com/tradeoracle/signal-bot/internal/config"
	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/pricing"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

// fixedPrice pins every reference lookup to the -price override.
type fixedPrice float64

func (f fixedPrice) Price(string) (float64, error) { return float64(f), nil }

func main() {
	var (
		envFile     = flag.String("env", ".env", "Environment file path")
		rulesPath   = flag.String("rules", "", "Rules file, .json or .xlsx (defaults to RULES_PATH)")
		style       = flag.String("style", "", "Message style for -message output (defaults to MESSAGE_STYLE)")
		price       = flag.Float64("price", 0, "Reference price override")
		file        = flag.String("f", "", "Read instructions from a file, one per line")
		asJSON      = flag.Bool("json", false, "Emit results as JSON")
		asMessage   = flag.Bool("message", false, "Emit the formatted broadcast message")
		journalPath = flag.String("journal", "", "Append results to this journal workbook")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		common.PrintVersion("signal")
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *rulesPath == "" {
		*rulesPath = cfg.RulesPath
	}
	if *style == "" {
		*style = cfg.MessageStyle
	}

	instructions, err := gatherInstructions(*file, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if len(instructions) == 0 {
		usage()
		os.Exit(2)
	}

	table, err := common.LoadRules(*rulesPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ could not load rules: %v\n", err)
		os.Exit(1)
	}

	var prices signal.PriceSource = pricing.NewStatic(nil)
	if *price > 0 {
		prices = fixedPrice(*price)
	}
	pipeline := signal.NewPipeline(table, prices)
	formatter := format.New(*style, cfg.Signature)

	var jnl *journal.Journal
	if *journalPath != "" {
		jnl = journal.New(*journalPath)
	}

	var results []*signal.Result
	failed := 0
	for _, text := range instructions {
		res, err := pipeline.Process(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %q: %v\n", text, err)
			failed++
			continue
		}
		results = append(results, res)

		if jnl != nil {
			if err := jnl.Append(res); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  journal: %v\n", err)
			}
		}

		switch {
		case *asJSON:
			// printed together after the loop
		case *asMessage:
			fmt.Println(formatter.Format(res).Message)
			fmt.Println()
		default:
			renderResult(os.Stdout, res)
		}
	}

	if *asJSON && len(results) > 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if *file == "" && len(results) == 1 {
			_ = enc.Encode(results[0])
		} else {
			_ = enc.Encode(results)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// gatherInstructions collects the batch from -f, or the joined command
// line arguments as a single instruction. Blank lines and # comments in
// batch files are skipped.
func gatherInstructions(path string, args []string) ([]string, error) {
	if path == "" {
		if len(args) == 0 {
			return nil, nil
		}
		return []string{strings.Join(args, " ")}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var instructions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		instructions = append(instructions, line)
	}
	return instructions, scanner.Err()
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: signal [flags] INSTRUCTION\n")
	fmt.Fprintf(os.Stderr, "       signal [flags] -f instructions.txt\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  signal \"LONG BTCUSD M5\"\n")
	fmt.Fprintf(os.Stderr, "  signal -style premium -message \"SHORT GOLD M1\"\n")
	fmt.Fprintf(os.Stderr, "  signal -price 2450 -json \"BUY ETH H1\"\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
