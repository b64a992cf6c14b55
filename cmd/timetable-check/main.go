// Command timetable-check runs a one-shot conflict pre-check against a
// running API instance, mirroring what the admin console does while a
// timetable entry is being composed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/precheck"
	"github.com/tahasaad555/campus-admin-api/pkg/config"
	"github.com/tahasaad555/campus-admin-api/pkg/logger"
)

func main() {
	var (
		groupID  = flag.String("group", "", "class group id (required)")
		day      = flag.String("day", "", "weekday, e.g. MONDAY (required)")
		start    = flag.String("start", "", "start time HH:MM (required)")
		end      = flag.String("end", "", "end time HH:MM (required)")
		location = flag.String("location", "", "room number, empty skips the room dimension")
		baseURL  = flag.String("base-url", "", "API base URL, overrides PRECHECK_ORACLE_BASE_URL")
	)
	flag.Parse()

	if *groupID == "" || *day == "" || *start == "" || *end == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	target := cfg.Precheck.OracleBaseURL
	if *baseURL != "" {
		target = *baseURL
	}
	if target == "" {
		target = fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.APIPrefix)
	}

	oracle := precheck.NewHTTPOracle(target, cfg.Precheck.OracleTimeout, logr)
	checker := precheck.NewChecker(oracle, cfg.Precheck.DebounceDelay, logr)
	defer checker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Precheck.OracleTimeout)
	defer cancel()

	verdict := checker.CheckNow(ctx, precheck.Request{
		ClassGroupID: *groupID,
		Candidate: models.TimetableEntry{
			Day:       models.Weekday(*day),
			StartTime: *start,
			EndTime:   *end,
			Location:  *location,
		},
		EditIndex: -1,
	})
	if verdict == nil {
		fmt.Fprintln(os.Stderr, "no verdict: oracle unreachable or candidate incomplete")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode verdict: %v", err)
	}
	fmt.Println(string(out))

	if verdict.HasConflict {
		os.Exit(1)
	}
}
