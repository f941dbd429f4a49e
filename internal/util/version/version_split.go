// Package version splits "name v1.2.3" style source strings into the
// name and a parsed semver.  Instrumentation sources are configured as
// a single string; downstream consumers (like the OpenTelemetry
// bridge's instrumentation scope) want the parts.
package version

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

var sourceVersionRE = regexp.MustCompile(`^(.+?)[- ]v?(\d+\.\d+\.\d+(?:-\S+)?)$`)

// SplitVersionWithError separates a trailing version from a source
// string.  A string with no recognizable version parses as the whole
// string plus version 0.0.0.
func SplitVersionWithError(source string) (string, *semver.Version, error) {
	var version string
	if m := sourceVersionRE.FindStringSubmatch(source); m != nil {
		source = m[1]
		version = m[2]
	} else {
		version = "0.0.0"
	}
	sver, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", nil, errors.Wrapf(err, "semver '%s' is not valid", version)
	}
	return source, sver, nil
}

var ZeroVersion = func() *semver.Version {
	sver, err := semver.StrictNewVersion("0.0.0")
	if err != nil {
		panic(err)
	}
	return sver
}()

// SplitVersion is SplitVersionWithError with the error swallowed: bad
// strings come back whole with version 0.0.0.
func SplitVersion(source string) (string, *semver.Version) {
	n, v, err := SplitVersionWithError(source)
	if err != nil {
		return source, ZeroVersion
	}
	return n, v
}
