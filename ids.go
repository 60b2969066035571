package pikax

import "strconv"

// ArtworkID is the numeric identifier of a single artwork on the remote
// service.
type ArtworkID int64

func (id ArtworkID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseArtworkID(s string) (ArtworkID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}

	return ArtworkID(v), nil
}

// ProcessType selects which artwork constructor a batch of ids is resolved
// with.
type ProcessType string

const (
	ProcessTypeIllust ProcessType = "illust"
	ProcessTypeManga  ProcessType = "manga"
)

func (t ProcessType) Valid() bool {
	switch t {
	case ProcessTypeIllust, ProcessTypeManga:
		return true
	default:
		return false
	}
}
