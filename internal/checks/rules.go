package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

const typeRule = "AWS::Events::Rule"

// RuleTrigger checks EventBridge rules: one trigger each, a valid schedule,
// Lambda targets in the same stack, and an invoke permission per target.
type RuleTrigger struct{}

func (RuleTrigger) Name() string { return "rule-trigger" }

func (RuleTrigger) Description() string {
	return "rules have an event pattern or a valid schedule and invoke functions they are permitted to"
}

func (c RuleTrigger) Run(doc *Document) []Finding {
	var findings []Finding
	targets := make(map[string]bool)
	var scheduled, patterned int

	for _, rule := range doc.ofType(typeRule) {
		pattern, hasPattern := rule.Props["EventPattern"]
		schedule, hasSchedule := rule.Props["ScheduleExpression"]

		switch {
		case hasPattern && hasSchedule:
			findings = append(findings, errorf(c.Name(), rule.Name, "rule sets both EventPattern and ScheduleExpression"))
		case !hasPattern && !hasSchedule:
			findings = append(findings, errorf(c.Name(), rule.Name, "rule sets neither EventPattern nor ScheduleExpression"))
		case hasSchedule:
			scheduled++
			expr, ok := schedule.(string)
			if !ok {
				findings = append(findings, errorf(c.Name(), rule.Name, "ScheduleExpression must be a string"))
			} else if err := ValidateSchedule(expr); err != nil {
				findings = append(findings, errorf(c.Name(), rule.Name, "%v", err))
			}
		default:
			patterned++
			if m, ok := pattern.(map[string]any); !ok || len(m) == 0 {
				findings = append(findings, errorf(c.Name(), rule.Name, "EventPattern must be a non-empty object"))
			} else if _, ok := m["detail_type"]; ok {
				findings = append(findings, errorf(c.Name(), rule.Name, `EventPattern key "detail_type" should be "detail-type"`))
			}
		}

		ruleTargets, _ := rule.Props["Targets"].([]any)
		if len(ruleTargets) == 0 {
			findings = append(findings, errorf(c.Name(), rule.Name, "rule has no targets"))
		}
		for _, raw := range ruleTargets {
			target, _ := raw.(map[string]any)
			fn, attr, ok := getAttTarget(target["Arn"])
			if !ok || attr != "Arn" || !doc.isType(fn, typeFunction) {
				findings = append(findings, errorf(c.Name(), rule.Name, "target %v is not a function of this stack", target["Id"]))
				continue
			}
			targets[fn] = true
			if !doc.permits(fn, "events.amazonaws.com", rule.Name) {
				findings = append(findings, errorf(c.Name(), rule.Name,
					"no lambda:InvokeFunction permission lets this rule invoke %s", fn))
			}
		}
	}

	if doc.Kind == "event-rule" {
		if scheduled != 1 || patterned != 1 {
			findings = append(findings, errorf(c.Name(), "",
				"event-rule stacks need one scheduled and one pattern rule, found %d and %d", scheduled, patterned))
		}
		if len(targets) > 1 {
			findings = append(findings, errorf(c.Name(), "", "rules target %d different functions", len(targets)))
		}
	}
	return findings
}

// permits reports whether a Lambda permission grants principal the right to
// invoke fn with SourceArn pointing at source, or covering it through Fn::Sub.
func (d *Document) permits(fn, principal, source string) bool {
	for _, perm := range d.ofType(typePermission) {
		if perm.Props["Action"] != "lambda:InvokeFunction" || perm.Props["Principal"] != principal {
			continue
		}
		target, _, ok := getAttTarget(perm.Props["FunctionName"])
		if !ok {
			target, ok = refTarget(perm.Props["FunctionName"])
		}
		if !ok || target != fn {
			continue
		}
		if name, _, ok := getAttTarget(perm.Props["SourceArn"]); ok && name == source {
			return true
		}
		if text, ok := stringValue(perm.Props["SourceArn"]); ok {
			for _, sub := range substitutions(text) {
				if name, _, _ := strings.Cut(sub, "."); name == source {
					return true
				}
			}
		}
	}
	return false
}

var ratePattern = regexp.MustCompile(`^rate\((\d+) (minute|minutes|hour|hours|day|days)\)$`)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks an EventBridge schedule expression: rate(N unit) or
// cron(minutes hours day-of-month month day-of-week year).
func ValidateSchedule(expr string) error {
	switch {
	case strings.HasPrefix(expr, "rate("):
		return validateRate(expr)
	case strings.HasPrefix(expr, "cron(") && strings.HasSuffix(expr, ")"):
		return validateCron(strings.TrimSuffix(strings.TrimPrefix(expr, "cron("), ")"))
	}
	return fmt.Errorf("schedule %q must be rate(...) or cron(...)", expr)
}

func validateRate(expr string) error {
	m := ratePattern.FindStringSubmatch(expr)
	if m == nil {
		return fmt.Errorf("schedule %q: want rate(<value> <minute|hour|day>[s])", expr)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return fmt.Errorf("schedule %q: rate value must be a positive integer", expr)
	}
	plural := strings.HasSuffix(m[2], "s")
	if n == 1 && plural {
		return fmt.Errorf("schedule %q: use the singular unit for a value of 1", expr)
	}
	if n > 1 && !plural {
		return fmt.Errorf("schedule %q: use the plural unit for values above 1", expr)
	}
	return nil
}

// validateCron checks the six EventBridge cron fields. The year field and
// the L, W and # extensions have no counterpart in the five-field parser,
// so those fields are checked for shape only.
func validateCron(fields string) error {
	parts := strings.Fields(fields)
	if len(parts) != 6 {
		return fmt.Errorf("cron(%s): want 6 fields, got %d", fields, len(parts))
	}
	dom, dow := parts[2], parts[4]
	if (dom == "?") == (dow == "?") {
		return fmt.Errorf("cron(%s): exactly one of day-of-month and day-of-week must be ?", fields)
	}

	spec := make([]string, 5)
	copy(spec, parts[:5])
	for i, field := range spec {
		if field == "?" {
			spec[i] = "*"
			continue
		}
		if strings.ContainsAny(field, "LW#") {
			spec[i] = "*"
		}
	}
	spec[4] = shiftWeekdays(spec[4])

	if _, err := scheduleParser.Parse(strings.Join(spec, " ")); err != nil {
		return fmt.Errorf("cron(%s): %w", fields, err)
	}
	return nil
}

var weekdayNumber = regexp.MustCompile(`\d+`)

// shiftWeekdays maps EventBridge day numbers (1-7, Sunday first) onto 0-6.
func shiftWeekdays(field string) string {
	return weekdayNumber.ReplaceAllStringFunc(field, func(s string) string {
		n, _ := strconv.Atoi(s)
		if n >= 1 && n <= 7 {
			return strconv.Itoa(n - 1)
		}
		return s
	})
}
