package feedback

import (
	"fmt"
	"math"
	"strings"
)

// DefaultThreshold separates accurate from inaccurate performances.
const DefaultThreshold = 2.0

type Verdict string

const (
	VerdictHigh Verdict = "high"
	VerdictLow  Verdict = "low"
)

// VerdictFor grades a distance. Non-finite distances are always low.
func VerdictFor(distance, threshold float64) Verdict {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return VerdictLow
	}
	if distance <= threshold {
		return VerdictHigh
	}
	return VerdictLow
}

const systemPrompt = "You are a fitness expert. You evaluate how closely a user's exercise " +
	"movement matches a reference performance and give practical coaching feedback."

func buildMessages(distance float64, action string, threshold float64) []Message {
	var b strings.Builder
	fmt.Fprintf(&b, "The user's '%s' movement was compared against the reference. The DTW distance is %.4f.\n", action, distance)
	fmt.Fprintf(&b, "A distance of %.1f or lower means high accuracy; above %.1f means low accuracy.\n", threshold, threshold)
	fmt.Fprintf(&b, "This result is graded as %s accuracy. Based on it, give feedback:\n", VerdictFor(distance, threshold))
	b.WriteString("- If accuracy is low: give specific corrections to fix the posture.\n")
	b.WriteString("- If accuracy is high: give praise and suggest one small improvement.\n")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
