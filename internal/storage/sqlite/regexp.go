package sqlite

import (
	"regexp"
	"sync"
)

// patternCache holds compiled REGEXP patterns. A search evaluates the same
// pattern once per row.
var patternCache = struct {
	sync.Mutex
	last string
	re   *regexp.Regexp
}{}

// regexpMatch implements `value REGEXP pattern`, which SQLite rewrites to
// regexp(pattern, value).
func regexpMatch(pattern, value string) (bool, error) {
	patternCache.Lock()
	re := patternCache.re
	if re == nil || patternCache.last != pattern {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			patternCache.Unlock()
			return false, err
		}
		patternCache.last, patternCache.re = pattern, compiled
		re = compiled
	}
	patternCache.Unlock()
	return re.MatchString(value), nil
}
