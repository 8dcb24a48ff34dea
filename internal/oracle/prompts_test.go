package oracle

import (
	"strings"
	"testing"

	"chunkwise/internal/models"
)

func TestExtractChunksPrompt_IncludesContext(t *testing.T) {
	prompt := extractChunksPrompt(ExtractChunksRequest{
		AreaTitle:      "Writing",
		IntentionTitle: "Finish the draft",
		ExistingChunks: []ExistingChunk{{Title: "Outline chapters", DoD: "outline written"}},
	})

	for _, want := range []string{
		"Area: Writing",
		"Intention: Finish the draft",
		"Outline chapters",
		"avoid duplicating these",
		"30-120 minutes",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExtractChunksPrompt_OmitsEmptySections(t *testing.T) {
	prompt := extractChunksPrompt(ExtractChunksRequest{
		AreaTitle:      "Writing",
		IntentionTitle: "Finish the draft",
	})
	if strings.Contains(prompt, "Existing chunks") {
		t.Errorf("prompt lists existing chunks when there are none")
	}
	if strings.Contains(prompt, "Description:") {
		t.Errorf("prompt includes an empty description line")
	}
}

func TestBuildPlanPrompt_SeparatesLockedChunks(t *testing.T) {
	prompt := buildPlanPrompt(BuildPlanRequest{
		TimeBudgetMin: 240,
		EnergyMode:    models.EnergyModeDeep,
		MaxTasks:      5,
		Candidates: []CandidateChunk{
			{ChunkID: "c-locked", Title: "Must do", DurationMin: 60, AreaTitle: "Work"},
			{ChunkID: "c-free", Title: "Could do", DurationMin: 45, AreaTitle: "Home", AreaWeight: 3},
		},
		LockedChunkIDs: []string{"c-locked"},
	})

	if !strings.Contains(prompt, "LOCKED CHUNKS") || !strings.Contains(prompt, "Must do") {
		t.Errorf("locked section missing or incomplete")
	}
	if !strings.Contains(prompt, "ID: c-free") {
		t.Errorf("available section missing the free candidate")
	}
	// The locked chunk must not also be offered as freely selectable.
	if strings.Contains(prompt, "ID: c-locked") {
		t.Errorf("locked chunk listed among available chunks")
	}
	if !strings.Contains(prompt, "Time Budget: 240 minutes (4h 0m)") {
		t.Errorf("time budget line missing or misformatted")
	}
	if !strings.Contains(prompt, "Deep Focus") {
		t.Errorf("energy mode description missing")
	}
}

func TestSplitChunkPrompt_ComputesPartCount(t *testing.T) {
	prompt := splitChunkPrompt(SplitChunkRequest{
		ChunkTitle:          "Refactor the importer",
		ChunkDoD:            "importer handles all formats",
		OriginalDurationMin: 110,
		TargetDurationMin:   45,
	})
	// ceil(110/45) = 3
	if !strings.Contains(prompt, "Split this chunk into 3 smaller chunks") {
		t.Errorf("part count not derived from durations")
	}
	if !strings.Contains(prompt, "Original Duration: 110 minutes") {
		t.Errorf("original duration missing")
	}
}
