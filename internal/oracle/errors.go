package oracle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFatalAPI marks backend errors that retrying will not fix: bad
// credentials, exhausted quota, billing problems. Callers should stop
// the run instead of hammering the API.
var ErrFatalAPI = errors.New("fatal API error")

var fatalIndicators = []string{
	"credit balance",
	"rate limit",
	"quota",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range fatalIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %v", ErrFatalAPI, err)
	}
	return err
}
