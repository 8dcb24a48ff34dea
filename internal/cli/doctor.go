package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"chunkwise/internal/constants"
	"chunkwise/internal/models"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: store reachable
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		fmt.Println()
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("storage is not reachable")
	}
	fmt.Printf("✓ Storage reachable: OK (%s)\n", ctx.Store.GetConfigPath())

	// Check 2: basic data access
	if _, err := ctx.Store.ListAreas(ctx.Owner); err != nil {
		fmt.Printf("❌ Data access: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Data access: OK\n")
	}

	// Check 3: stranded chunks (warning only). Expired plans keep their
	// items, so chunks can stay inPlan with no open plan holding them.
	if stranded, err := cmd.findStrandedChunks(ctx); err != nil {
		fmt.Printf("⚠ Stranded chunks: could not check (%v)\n", err)
	} else if len(stranded) > 0 {
		fmt.Printf("⚠ Stranded chunks: %d chunk(s) marked scheduled with no open plan\n", len(stranded))
		for _, ch := range stranded {
			fmt.Printf("   - %s [%s] %s\n", ch.Title, ch.Status, dimStyle.Render(ch.ID))
		}
		fmt.Printf("   Fix: 'chunkwise chunk edit <id> --status ready' after removing stale items\n")
	} else {
		fmt.Printf("✓ Stranded chunks: none\n")
	}

	// Check 4: another chunkwise process (warning only; SQLite is
	// single-writer)
	if other, err := cmd.findOtherProcess(); err != nil {
		fmt.Printf("⚠ Concurrent process: could not check (%v)\n", err)
	} else if other != 0 {
		fmt.Printf("⚠ Concurrent process: another %s process is running (pid %d)\n", constants.AppName, other)
	} else {
		fmt.Printf("✓ Concurrent process: none\n")
	}

	// Check 5: clock sanity
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		fmt.Printf("❌ Clock: system time appears incorrect: %s\n", now.Format(time.RFC3339))
		hasError = true
	} else {
		fmt.Printf("✓ Clock: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func (cmd *DoctorCmd) findStrandedChunks(ctx *Context) ([]models.Chunk, error) {
	var stranded []models.Chunk
	for _, status := range []models.ChunkStatus{models.ChunkStatusInPlan, models.ChunkStatusInProgress} {
		chunks, err := ctx.Store.ListChunksByOwnerStatus(ctx.Owner, status)
		if err != nil {
			return nil, err
		}
		for _, ch := range chunks {
			items, err := ctx.Store.ListItemsByChunk(ch.ID)
			if err != nil {
				return nil, err
			}
			open := false
			for _, it := range items {
				plan, err := ctx.Store.GetPlan(it.DayPlanID)
				if err == nil && plan.Open() {
					open = true
					break
				}
			}
			if !open {
				stranded = append(stranded, ch)
			}
		}
	}
	return stranded, nil
}

func (cmd *DoctorCmd) findOtherProcess() (int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return 0, err
	}
	self := os.Getpid()
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		name := strings.TrimSuffix(p.Executable(), ".exe")
		if name == constants.AppName {
			return p.Pid(), nil
		}
	}
	return 0, nil
}
