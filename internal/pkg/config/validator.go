package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the five-field form the digest scheduler uses.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func ValidateCronSchedule(spec string) error {
	if spec == "" {
		return errors.New("cron schedule is empty")
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("cron schedule %q: %w", spec, err)
	}
	return nil
}

func ValidateTimezone(name string) error {
	if name == "" {
		return errors.New("timezone is empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	return nil
}

// InRange reports whether lo <= v <= hi.
func InRange[T cmp.Ordered](v, lo, hi T) error {
	if lo > hi {
		return fmt.Errorf("bad range [%v, %v]", lo, hi)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%v is outside [%v, %v]", v, lo, hi)
	}
	return nil
}

func ValidateDuration(d, lo, hi time.Duration) error { return InRange(d, lo, hi) }

func ValidateIntRange(v, lo, hi int) error { return InRange(v, lo, hi) }
