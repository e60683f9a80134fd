package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/logger"
)

// Update is one full-installer offering from the catalog listing.
type Update struct {
	// Name is the marketing name of the release, e.g. "macOS Monterey".
	Name string `yaml:"name"`
	// Version is the dotted version string, e.g. "12.3".
	Version string `yaml:"version"`
	// Size is the raw size segment from the listing, e.g. "9453092K".
	Size string `yaml:"size"`
}

// SizeBytes converts the raw kilo-suffixed size into a byte count.
func (u Update) SizeBytes() (int64, error) {
	kilobytes, err := strconv.ParseInt(strings.TrimSuffix(u.Size, "K"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", u.Size, err)
	}

	return kilobytes * 1000, nil
}

// Resolver queries the update catalog for full installers.
type Resolver struct {
	// runner executes softwareupdate invocations.
	runner execution.Runner
	// tool is the path to the softwareupdate binary.
	tool string
}

const (
	// versionMarker identifies listing lines that describe an installer.
	versionMarker = "Version"

	// listingFieldCount is how many positional fields a listing line carries.
	listingFieldCount = 3
)

// ErrNoUpdates is returned when the catalog offers no full installers.
var ErrNoUpdates = errors.New("no updates have been found")

// NewResolver returns a Resolver using the provided runner and tool path.
func NewResolver(runner execution.Runner, tool string) *Resolver {
	return &Resolver{
		runner: runner,
		tool:   tool,
	}
}

// List returns all offered installers, sorted by version descending.
func (r *Resolver) List(ctx context.Context) ([]Update, error) {
	output, err := r.runner.Output(ctx, r.tool, "--list-full-installers")
	if err != nil {
		return nil, fmt.Errorf("list full installers: %w", err)
	}

	updates := parseListing(ctx, string(output))
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}

	sortByVersionDescending(updates)

	return updates, nil
}

// ResolveLatest returns the offering with the highest version.
func (r *Resolver) ResolveLatest(ctx context.Context) (Update, error) {
	updates, err := r.List(ctx)
	if err != nil {
		return Update{}, err
	}

	logger.DebugKV(ctx, "Catalog offerings", "updates", updates)
	logger.Infof(ctx, "Latest version found is %s %s", updates[0].Name, updates[0].Version)

	return updates[0], nil
}

// parseListing extracts update records from the line-oriented catalog output.
// A line is a candidate only if it carries the version marker; malformed
// candidates are skipped, not fatal.
func parseListing(ctx context.Context, listing string) []Update {
	var updates []Update

	for _, line := range strings.Split(listing, "\n") {
		if !strings.Contains(line, versionMarker) {
			continue
		}

		update, ok := parseLine(line)
		if !ok {
			logger.WarnKV(ctx, "Skipping malformed listing line", "line", line)
			continue
		}

		updates = append(updates, update)
	}

	return updates
}

// parseLine splits a candidate line on commas, then on the first colon of
// each segment, and assigns the values positionally.
func parseLine(line string) (Update, bool) {
	segments := strings.Split(line, ",")
	if len(segments) < listingFieldCount {
		return Update{}, false
	}

	values := make([]string, 0, len(segments))

	for _, segment := range segments {
		_, value, found := strings.Cut(segment, ":")
		if !found {
			return Update{}, false
		}

		values = append(values, strings.TrimSpace(value))
	}

	update := Update{
		Name:    values[0],
		Version: values[1],
		Size:    values[2],
	}

	if _, err := goversion.NewVersion(update.Version); err != nil {
		return Update{}, false
	}

	return update, true
}

// sortByVersionDescending orders updates so the highest version is first.
// Versions compare by dotted components, not lexically.
func sortByVersionDescending(updates []Update) {
	sort.SliceStable(updates, func(i, j int) bool {
		left, leftErr := goversion.NewVersion(updates[i].Version)
		right, rightErr := goversion.NewVersion(updates[j].Version)

		if leftErr != nil || rightErr != nil {
			return false
		}

		return left.GreaterThan(right)
	})
}
