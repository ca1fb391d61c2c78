package enums

// ArchiveAction names the destructive action captured by a deletion archive row.
type ArchiveAction string

const (
	ArchiveActionDelete ArchiveAction = "delete"
)

func (a ArchiveAction) String() string {
	return string(a)
}
