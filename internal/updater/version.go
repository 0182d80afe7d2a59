package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a release tag in palefire's vMAJOR.MINOR.PATCH[-pre]
// scheme. Pre-release builds ("1.4.0-rc.1") sort before the bare
// version with the same numbers.
type Version struct {
	Major, Minor, Patch int
	Pre                 string
}

// ParseVersion parses a release tag. The leading "v" is optional.
func ParseVersion(tag string) (Version, error) {
	s := strings.TrimPrefix(tag, "v")

	var v Version
	if i := strings.IndexByte(s, '-'); i >= 0 {
		v.Pre = s[i+1:]
		s = s[:i]
		if v.Pre == "" {
			return Version{}, fmt.Errorf("malformed version tag %q", tag)
		}
	}

	nums := strings.Split(s, ".")
	if len(nums) != 3 {
		return Version{}, fmt.Errorf("malformed version tag %q", tag)
	}
	for i, field := range []*int{&v.Major, &v.Minor, &v.Patch} {
		n, err := strconv.Atoi(nums[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("malformed version tag %q", tag)
		}
		*field = n
	}
	return v, nil
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Older reports whether v precedes other in release order.
func (v Version) Older(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	if v.Patch != other.Patch {
		return v.Patch < other.Patch
	}
	if (v.Pre == "") != (other.Pre == "") {
		return v.Pre != ""
	}
	// Two pre-releases of the same version compare by tag text, which
	// orders palefire's rc.N tags correctly for single-digit N.
	return v.Pre < other.Pre
}
