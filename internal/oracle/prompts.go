package oracle

import (
	"fmt"
	"strings"

	"chunkwise/internal/models"
)

const extractSystemPrompt = "You are a helpful assistant that breaks down work intentions into actionable chunks. Always respond with valid JSON only."

const buildPlanSystemPrompt = "You are a helpful assistant that creates optimal daily work plans. Always respond with valid JSON only."

const splitSystemPrompt = "You are a helpful assistant that splits large work chunks into smaller, manageable pieces. Always respond with valid JSON only."

var energyModeDescriptions = map[models.EnergyMode]string{
	models.EnergyModeDeep:   "Deep Focus - Prefer complex, challenging tasks requiring sustained concentration",
	models.EnergyModeNormal: "Normal - Balanced mix of tasks with varying complexity",
	models.EnergyModeLight:  "Light Tasks - Prefer simpler, less demanding tasks for low-energy periods",
}

func extractChunksPrompt(req ExtractChunksRequest) string {
	var b strings.Builder
	b.WriteString("You are an assistant helping to break down a high-level intention into executable work chunks.\n\n")
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "- Area: %s\n", req.AreaTitle)
	fmt.Fprintf(&b, "- Intention: %s\n", req.IntentionTitle)
	if req.IntentionDescription != "" {
		fmt.Fprintf(&b, "- Description: %s\n", req.IntentionDescription)
	}
	if len(req.ExistingChunks) > 0 {
		b.WriteString("\nExisting chunks for this intention (avoid duplicating these):\n")
		for _, c := range req.ExistingChunks {
			fmt.Fprintf(&b, "- %s: %s\n", c.Title, c.DoD)
		}
	}
	b.WriteString(`
TASK:
Break this intention into 3-7 concrete, actionable work chunks that:
1. Are specific and executable (not vague)
2. Have a clear Definition of Done (DoD)
3. Take between 30-120 minutes each
4. Can be completed independently
5. Move the intention forward meaningfully
6. Are tagged with relevant keywords (2-4 tags per chunk)

RULES:
- Each chunk MUST have a duration between 30-120 minutes
- Each chunk MUST have a clear, measurable Definition of Done
- Avoid duplicating existing chunks
- Focus on concrete deliverables, not abstract goals
- Tags should be lowercase, single words or hyphenated (e.g., "backend", "ui", "bug-fix")

OUTPUT FORMAT (JSON):
{
  "chunks": [
    {
      "title": "Clear, action-oriented title",
      "dod": "Specific, measurable definition of done",
      "durationMin": 60,
      "tags": ["tag1", "tag2"]
    }
  ],
  "reasoning": "Brief explanation of how these chunks break down the intention"
}

Return ONLY valid JSON, no additional text.`)
	return b.String()
}

func buildPlanPrompt(req BuildPlanRequest) string {
	locked := make(map[string]bool, len(req.LockedChunkIDs))
	for _, id := range req.LockedChunkIDs {
		locked[id] = true
	}

	var b strings.Builder
	b.WriteString("You are an assistant helping to build an optimal daily work plan.\n\n")
	b.WriteString("CONSTRAINTS:\n")
	fmt.Fprintf(&b, "- Time Budget: %d minutes (%dh %dm)\n",
		req.TimeBudgetMin, req.TimeBudgetMin/60, req.TimeBudgetMin%60)
	fmt.Fprintf(&b, "- Energy Mode: %s - %s\n", req.EnergyMode, energyModeDescriptions[req.EnergyMode])
	fmt.Fprintf(&b, "- Max Tasks: %d chunks\n", req.MaxTasks)
	if len(req.LockedChunkIDs) > 0 {
		b.WriteString("\nLOCKED CHUNKS (must include these first):\n")
		for _, c := range req.Candidates {
			if locked[c.ChunkID] {
				fmt.Fprintf(&b, "- %s (%dm) from %s\n", c.Title, c.DurationMin, c.AreaTitle)
			}
		}
	}
	b.WriteString("\nAVAILABLE CHUNKS:\n")
	for _, c := range req.Candidates {
		if locked[c.ChunkID] {
			continue
		}
		fmt.Fprintf(&b, "- ID: %s, Title: %q, Duration: %dm, Tags: [%s], Area: %s (weight: %d)",
			c.ChunkID, c.Title, c.DurationMin, strings.Join(c.Tags, ", "), c.AreaTitle, c.AreaWeight)
		if c.IntentionTitle != "" {
			fmt.Fprintf(&b, ", Intention: %s", c.IntentionTitle)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `
TASK:
Create an optimal day plan by selecting up to %d chunks that:
1. Include ALL locked chunks (if any) in their current positions
2. Fit within the time budget (can use up to 120%% if needed, but prefer staying under 100%%)
3. Match the energy mode (%s)
4. Maximize productivity by:
   - Prioritizing high-weight areas
   - Grouping related chunks (similar tags)
   - Balancing task variety
   - Considering cognitive flow
5. Provide clear reasoning for each selection

SCORING CRITERIA:
- Area weight: Higher weight areas are more important
- Task clustering: Related tasks (similar tags) should be grouped
- Energy match: Tasks should match the selected energy mode
- Time optimization: Efficient use of available time
- Variety: Avoid too many tasks from same area/intention

OUTPUT FORMAT (JSON):
{
  "suggestedItems": [
    {
      "chunkId": "chunk_id_here",
      "order": 1,
      "reasoning": "Why this chunk at this position"
    }
  ],
  "totalDuration": 240,
  "reasoning": "Overall strategy and rationale for this plan",
  "energyBalance": "Assessment of how well this plan matches the energy mode"
}

IMPORTANT:
- Return ONLY valid JSON, no additional text
- Include locked chunks at their specified positions
- Ensure total chunks <= %d
- Order matters: arrange chunks for optimal flow`, req.MaxTasks, req.EnergyMode, req.MaxTasks)
	return b.String()
}

func splitChunkPrompt(req SplitChunkRequest) string {
	parts := (req.OriginalDurationMin + req.TargetDurationMin - 1) / req.TargetDurationMin

	var b strings.Builder
	b.WriteString("You are an assistant helping to split an oversized work chunk into smaller, manageable pieces.\n\n")
	b.WriteString("ORIGINAL CHUNK:\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.ChunkTitle)
	fmt.Fprintf(&b, "- Definition of Done: %s\n", req.ChunkDoD)
	fmt.Fprintf(&b, "- Original Duration: %d minutes\n", req.OriginalDurationMin)
	fmt.Fprintf(&b, "- Target Duration: %d minutes per part\n", req.TargetDurationMin)
	fmt.Fprintf(&b, "- Tags: [%s]\n", strings.Join(req.Tags, ", "))
	fmt.Fprintf(&b, `
TASK:
Split this chunk into %d smaller chunks that:
1. Each take approximately %d minutes (range: 30-120 minutes)
2. Have clear, specific Definitions of Done
3. Can be completed independently
4. Together accomplish the original chunk's goal
5. Maintain relevant tags from the original

RULES:
- Each part MUST be between 30-120 minutes
- Each part should have a clear deliverable
- The sum of parts should roughly equal the original duration
- Parts should be ordered logically
- Preserve the original intent and scope

OUTPUT FORMAT (JSON):
{
  "parts": [
    {
      "title": "Part 1: Specific sub-task title",
      "dod": "Clear definition of done for this part",
      "durationMin": 60,
      "tags": ["tag1", "tag2"]
    }
  ],
  "reasoning": "Brief explanation of how the split maintains the original goal"
}

Return ONLY valid JSON, no additional text.`, parts, req.TargetDurationMin)
	return b.String()
}
