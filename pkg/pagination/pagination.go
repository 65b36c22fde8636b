package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many documents any paginated query can request.
	MaxLimit = 100
)

// Params holds limit/skip pagination inputs from controllers or services.
type Params struct {
	Limit int
	Skip  int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeSkip clamps negative offsets to zero.
func NormalizeSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// Normalize applies both clamps and returns the cleaned parameters.
func Normalize(p Params) Params {
	return Params{
		Limit: NormalizeLimit(p.Limit),
		Skip:  NormalizeSkip(p.Skip),
	}
}
