package idmap

import "context"

// Directory is the host identity service: the account and group database
// of the machine the session runs on.
//
// Lookups return found=false when the name or id does not exist. That is a
// normal outcome, not an error; an error means the directory itself failed.
type Directory interface {
	// LookupName returns the name bound to id.
	LookupName(ctx context.Context, kind Kind, id uint32) (name string, found bool, err error)

	// LookupID returns the id bound to name.
	LookupID(ctx context.Context, kind Kind, name string) (id uint32, found bool, err error)

	// ProcessGroups returns every group the current process belongs to,
	// including its effective primary group.
	ProcessGroups(ctx context.Context) ([]uint32, error)

	// IsSuperuser reports whether the current process may assign arbitrary
	// ownership.
	IsSuperuser() bool
}

// ChannelWriter is the sending half of the session's ordered byte channel.
type ChannelWriter interface {
	WriteInt32(v int32) error
	WriteByte(b byte) error
	WriteBytes(data []byte) error
}

// ChannelReader is the receiving half of the session's ordered byte channel.
type ChannelReader interface {
	ReadInt32() (int32, error)
	ReadByte() (byte, error)
	ReadBytes(n int) ([]byte, error)
}
