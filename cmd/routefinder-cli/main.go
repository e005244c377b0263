// Command routefinder-cli runs one or more plan-search requests, read
// from JSON files, concurrently and prints each result as JSON
// (spec.md §6's statement that wire wrappers live outside the core
// library).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/viper"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/planservice"
	"github.com/mExOms/routefinder/internal/tolerance"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
	"github.com/mExOms/routefinder/pkg/wire"
)

type requestFile struct {
	Source           string           `json:"source"`
	Target           string           `json:"target"`
	SpendMin         money.Money      `json:"spendMin"`
	SpendMax         money.Money      `json:"spendMax"`
	Desired          *money.Money     `json:"desired,omitempty"`
	MinHops          int              `json:"minHops"`
	MaxHops          int              `json:"maxHops"`
	Tolerance        string           `json:"tolerance"`
	ToleranceMin     string           `json:"toleranceWindowMin"`
	ToleranceMax     string           `json:"toleranceWindowMax"`
	TopK             int              `json:"topK"`
	MaxExpansions    int              `json:"maxExpansions"`
	MaxVisitedStates int              `json:"maxVisitedStates"`
	Orders           []wire.OrderWire `json:"orders"`

	DisjointPlans      *bool `json:"disjointPlans,omitempty"`
	ThrowOnGuardBreach bool  `json:"throwOnGuardBreach,omitempty"`
}

type result struct {
	File    string                  `json:"file"`
	Outcome *planservice.SearchOutcome `json:"outcome,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/configs")
	viper.AddConfigPath("./configs")
	viper.SetDefault("cli.concurrency", 4)
	_ = viper.ReadInConfig()

	files := os.Args[1:]
	if len(files) == 0 {
		logger.Fatal("usage: routefinder-cli <request.json> [more-requests.json ...]")
	}

	concurrency := viper.GetInt("cli.concurrency")
	if concurrency <= 0 {
		concurrency = 4
	}

	p := pool.NewWithResults[result]().WithMaxGoroutines(concurrency)
	for _, file := range files {
		file := file
		p.Go(func() result {
			return runFile(file)
		})
	}

	results := p.Wait()
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		logger.WithError(err).Fatal("failed to encode results")
	}
}

func runFile(path string) result {
	data, err := os.ReadFile(path)
	if err != nil {
		return result{File: path, Error: fmt.Sprintf("read: %v", err)}
	}

	var rf requestFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return result{File: path, Error: fmt.Sprintf("parse: %v", err)}
	}

	request, err := toRequest(rf)
	if err != nil {
		return result{File: path, Error: fmt.Sprintf("build request: %v", err)}
	}

	outcome, err := planservice.FindBestPlans(request)
	if err != nil {
		return result{File: path, Error: err.Error()}
	}
	return result{File: path, Outcome: &outcome}
}

func toRequest(rf requestFile) (planservice.Request, error) {
	tol, err := decimalOrZero(rf.Tolerance, 18)
	if err != nil {
		return planservice.Request{}, err
	}
	windowMin, err := decimalOrZero(rf.ToleranceMin, tolerance.ResidualScale)
	if err != nil {
		return planservice.Request{}, err
	}
	windowMax, err := decimalOrZero(rf.ToleranceMax, tolerance.ResidualScale)
	if err != nil {
		return planservice.Request{}, err
	}

	orders := make([]*orderbook.Order, 0, len(rf.Orders))
	for _, o := range rf.Orders {
		order, err := o.ToOrder()
		if err != nil {
			return planservice.Request{}, err
		}
		orders = append(orders, order)
	}

	return planservice.Request{
		Source:           rf.Source,
		Target:           rf.Target,
		SpendMin:         rf.SpendMin,
		SpendMax:         rf.SpendMax,
		Desired:          rf.Desired,
		MinHops:          rf.MinHops,
		MaxHops:          rf.MaxHops,
		Tolerance:        tol,
		ToleranceWindow:  tolerance.Window{Min: windowMin, Max: windowMax},
		TopK:             rf.TopK,
		MaxExpansions:    rf.MaxExpansions,
		MaxVisitedStates: rf.MaxVisitedStates,
		Orders:           orders,

		DisjointPlans:      rf.DisjointPlans,
		ThrowOnGuardBreach: rf.ThrowOnGuardBreach,
	}, nil
}

func decimalOrZero(s string, scale int32) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero(scale)
	}
	return decimal.NewFromString(s, scale)
}
