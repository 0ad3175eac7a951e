package ucpschema

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Supported UCP annotation profile versions for this tooling core.
const (
	MinSupportedProfileVersion = "0.1.0"
	MaxTestedProfileVersion    = "0.1.0"
)

var (
	minSupportedSemver semver
	maxTestedSemver    semver
)

func init() {
	var err error
	minSupportedSemver, err = parseSemverStrict(MinSupportedProfileVersion)
	if err != nil {
		panic(fmt.Sprintf("ucpschema: invalid MinSupportedProfileVersion %q: %v", MinSupportedProfileVersion, err))
	}
	maxTestedSemver, err = parseSemverStrict(MaxTestedProfileVersion)
	if err != nil {
		panic(fmt.Sprintf("ucpschema: invalid MaxTestedProfileVersion %q: %v", MaxTestedProfileVersion, err))
	}
}

// IsSupportedProfileVersion reports whether v falls within the profile
// version range this core was built against.
func IsSupportedProfileVersion(v string) (bool, error) {
	parsed, err := parseSemverStrict(v)
	if err != nil {
		return false, err
	}
	return compareSemver(parsed, minSupportedSemver) >= 0 && compareSemver(parsed, maxTestedSemver) <= 0, nil
}

type semver struct {
	major int
	minor int
	patch int
}

func parseSemverStrict(v string) (semver, error) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil || patch < 0 {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	return semver{major: major, minor: minor, patch: patch}, nil
}

func compareSemver(a, b semver) int {
	if a.major != b.major {
		return cmp.Compare(a.major, b.major)
	}
	if a.minor != b.minor {
		return cmp.Compare(a.minor, b.minor)
	}
	return cmp.Compare(a.patch, b.patch)
}
