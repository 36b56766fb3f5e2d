package conversation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/futig/style-backend/internal/entity"
)

// buildHelp returns the help message for the given retry count, escalating
// from a hint to an example to a full explanation.
func buildHelp(q *entity.Question, retryCount int) (string, entity.GuideType) {
	guide := entity.GuideForRetry(retryCount)

	var tier string
	switch q.Validation.Type {
	case entity.RuleNumericRange:
		tier = numericHelp(q, guide)
	case entity.RuleChoice:
		tier = choiceHelp(q, guide)
	default:
		tier = textHelp(q, guide)
	}

	if q.HelpText == "" {
		return tier, guide
	}
	return q.HelpText + "\n" + tier, guide
}

func numericHelp(q *entity.Question, guide entity.GuideType) string {
	lo, hi := formatNumber(q.Validation.Min), formatNumber(q.Validation.Max)

	switch guide {
	case entity.GuideHint:
		return fmt.Sprintf("Hint: enter a number between %s and %s.", lo, hi)
	case entity.GuideExample:
		mid := q.Validation.Min + math.Floor((q.Validation.Max-q.Validation.Min)/2)
		return fmt.Sprintf("Example: %s", formatNumber(mid))
	default:
		return fmt.Sprintf("Explanation: the answer to %q must be a number between %s and %s.", q.Prompt, lo, hi)
	}
}

func choiceHelp(q *entity.Question, guide entity.GuideType) string {
	options := q.Validation.Options

	switch guide {
	case entity.GuideHint:
		return fmt.Sprintf("Hint: choose one of: %s.", strings.Join(options, ", "))
	case entity.GuideExample:
		if len(options) == 1 {
			return fmt.Sprintf("Example: '%s'", options[0])
		}
		return fmt.Sprintf("Example: '%s' or '%s'", options[0], options[1])
	default:
		quoted := make([]string, len(options))
		for i, o := range options {
			quoted[i] = "'" + o + "'"
		}
		return fmt.Sprintf("Explanation: the answer to %q must be exactly one of: %s.", q.Prompt, strings.Join(quoted, ", "))
	}
}

func textHelp(q *entity.Question, guide entity.GuideType) string {
	switch guide {
	case entity.GuideHint:
		return "Hint: answer in a few words."
	case entity.GuideExample:
		return "Example: describe it in one short sentence."
	default:
		return fmt.Sprintf("Explanation: the answer to %q cannot be empty.", q.Prompt)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
