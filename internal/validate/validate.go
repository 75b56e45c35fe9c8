package validate

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	MaxProfileIDLen = 64
	MaxChallengeLen = 128
	MaxNameLen      = 256
)

var profileIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func ProfileID(id string) error {
	if l := len(id); l == 0 {
		return errors.New("empty profile id")
	} else if l > MaxProfileIDLen {
		return fmt.Errorf("profile id too long; max %d characters", MaxProfileIDLen)
	}
	if !profileIDPattern.MatchString(id) {
		return errors.New("profile id may only contain lowercase letters, digits, '.', '_' and '-'")
	}
	return nil
}

func Challenge(challenge string) error {
	if l := len(challenge); l == 0 {
		return errors.New("empty challenge")
	} else if l > MaxChallengeLen {
		return fmt.Errorf("challenge too long; max %d characters", MaxChallengeLen)
	}
	return nil
}

func BoostName(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("name too long; max %d characters", MaxNameLen)
	}
	return nil
}
