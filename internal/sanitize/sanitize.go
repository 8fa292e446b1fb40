// Package sanitize holds the shared bluemonday policy behind the `sanitize`
// helper every engine registers.
package sanitize

import (
	"fmt"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the user-generated-content policy shared by all engines.
// bluemonday policies are safe for concurrent use once built.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// HTML strips markup the UGC policy does not allow. Non-string input is
// formatted with fmt first; nil yields "".
func HTML(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return Policy().Sanitize(v)
	default:
		return Policy().Sanitize(fmt.Sprint(v))
	}
}
