package idmap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/protocol/wire"
	"github.com/marmos91/dittosync/internal/telemetry"
	"github.com/marmos91/dittosync/pkg/filelist"
)

const (
	roleSender   = "sender"
	roleReceiver = "receiver"
)

// Options configures a Session.
type Options struct {
	// PreserveUID enables the user table.
	PreserveUID bool

	// PreserveGID enables the group table.
	PreserveGID bool

	// NumericIDs disables name translation entirely. Nothing is recorded,
	// sent, received, or rewritten.
	NumericIDs bool

	// Superuser overrides Directory.IsSuperuser when non-nil.
	Superuser *bool

	// Metrics receives observations. May be nil.
	Metrics Metrics
}

// ApplyResult summarizes one ApplyToBatch pass.
type ApplyResult struct {
	Files       int
	UIDChanged  int
	GIDChanged  int
	GIDWithheld int

	// Skipped is true when the pass was a no-op because no remapping mode
	// applies to this process.
	Skipped bool
}

// Session holds the identity-mapping state of one replication exchange.
//
// Outgoing tables are filled by RecordOutgoingID and written by
// EncodeCatalogs. Incoming tables are filled by DecodeAndResolveCatalogs
// and consulted by ApplyToBatch. A peer acting in both roles uses both
// sets independently.
type Session struct {
	id        string
	dir       Directory
	opts      Options
	superuser bool

	out [len(Kinds)]*Table
	in  [len(Kinds)]*Table

	membership *Membership
	resolver   *Resolver
	decoded    bool
}

// NewSession creates a session bound to dir.
func NewSession(dir Directory, opts Options) *Session {
	superuser := dir.IsSuperuser()
	if opts.Superuser != nil {
		superuser = *opts.Superuser
	}

	s := &Session{
		id:        uuid.NewString(),
		dir:       dir,
		opts:      opts,
		superuser: superuser,
	}
	s.membership = NewMembership(dir)
	s.resolver = NewResolver(dir, s.membership, superuser)
	for _, k := range Kinds {
		s.out[k] = NewTable(k)
		s.in[k] = NewTable(k)
	}
	return s
}

// ID returns the session identifier used in logs and traces.
func (s *Session) ID() string { return s.id }

// Superuser reports the privilege level the session applies ownership with.
func (s *Session) Superuser() bool { return s.superuser }

// Options returns the options the session was created with.
func (s *Session) Options() Options { return s.opts }

// Outgoing returns the table built by RecordOutgoingID for kind.
func (s *Session) Outgoing(kind Kind) *Table {
	if !kind.Valid() {
		return nil
	}
	return s.out[kind]
}

// Incoming returns the table filled by DecodeAndResolveCatalogs for kind.
func (s *Session) Incoming(kind Kind) *Table {
	if !kind.Valid() {
		return nil
	}
	return s.in[kind]
}

// Enabled reports whether the table for kind takes part in the exchange.
func (s *Session) Enabled(kind Kind) bool {
	if s.opts.NumericIDs {
		return false
	}
	switch kind {
	case KindUser:
		return s.opts.PreserveUID
	case KindGroup:
		return s.opts.PreserveGID
	default:
		return false
	}
}

// RecordOutgoingID adds id to the outgoing table for kind, bound to its
// local name.
//
// Nothing is added when the table is disabled, when id is 0, when id is
// already present, or when the id has no name on this host. None of these
// is an error. A name longer than the wire allows is treated as having no
// name.
func (s *Session) RecordOutgoingID(ctx context.Context, kind Kind, id uint32) error {
	if !kind.Valid() {
		return fmt.Errorf("record %d: %w", id, ErrUnknownKind)
	}
	if !s.Enabled(kind) || id == RootID {
		return nil
	}

	t := s.out[kind]
	if t.find(id) != nil {
		return nil
	}

	name, found, err := s.dir.LookupName(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("lookup name of %s %d: %w", kind, id, err)
	}
	if !found {
		return nil
	}
	if len(name) > wire.MaxNameLength {
		logger.DebugCtx(ctx, "Name too long for catalog, sending id numerically",
			logger.KeyKind, kind.String(), logger.KeySourceID, id, logger.KeyName, name)
		return nil
	}

	t.add(id, name)
	observeRecorded(s.opts.Metrics, kind)
	return nil
}

// RecordList records the owner and group of every entry in list. Each
// distinct id is looked up once, in first-seen order.
func (s *Session) RecordList(ctx context.Context, list *filelist.List) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanRecordList,
		telemetry.SessionID(s.id), telemetry.Files(list.Len()))
	defer span.End()

	uids, gids := list.Owners()
	for _, k := range Kinds {
		ids := uids
		if k == KindGroup {
			ids = gids
		}
		for _, id := range ids {
			if err := s.RecordOutgoingID(ctx, k, id); err != nil {
				telemetry.RecordError(ctx, err)
				return err
			}
		}
	}
	return nil
}

// EncodeCatalogs writes the enabled outgoing tables to w, user table first.
// Buffered writers must be flushed by the caller.
func (s *Session) EncodeCatalogs(ctx context.Context, w ChannelWriter) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanEncodeCatalogs, telemetry.SessionID(s.id), telemetry.Role(roleSender))
	defer span.End()
	ctx = s.logContext(ctx, roleSender)

	for _, k := range Kinds {
		if !s.Enabled(k) {
			continue
		}
		t := s.out[k]
		if err := encodeTable(w, t); err != nil {
			telemetry.RecordError(ctx, err)
			return err
		}
		logger.DebugCtx(ctx, "Catalog sent", logger.KeyKind, k.String(), logger.KeyRecords, t.Len())
	}
	return nil
}

// DecodeAndResolveCatalogs reads the enabled tables from r and resolves
// every record against the local directory as it arrives.
//
// A session decodes once; a second call returns ErrAlreadyDecoded until
// Reset.
func (s *Session) DecodeAndResolveCatalogs(ctx context.Context, r ChannelReader) error {
	if s.decoded {
		return ErrAlreadyDecoded
	}
	s.decoded = true

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDecodeCatalogs,
		telemetry.SessionID(s.id), telemetry.Role(roleReceiver), telemetry.Superuser(s.superuser))
	defer span.End()
	ctx = s.logContext(ctx, roleReceiver)

	for _, k := range Kinds {
		if !s.Enabled(k) {
			continue
		}
		kind, t := k, s.in[k]
		resolve := func(ctx context.Context, rec *Record) error {
			return s.resolveRecord(ctx, kind, rec)
		}
		if err := decodeTable(ctx, r, t, resolve); err != nil {
			telemetry.RecordError(ctx, err)
			return err
		}
		telemetry.AddEvent(ctx, "catalog decoded", telemetry.Kind(k.String()), telemetry.Records(t.Len()))
		s.dumpMappings(ctx, t)
	}
	return nil
}

func (s *Session) resolveRecord(ctx context.Context, kind Kind, rec *Record) error {
	resolved, outcome, err := s.resolver.Resolve(ctx, kind, rec.SourceID, rec.Name)
	if err != nil {
		return err
	}
	rec.ResolvedID = resolved
	observeResolution(s.opts.Metrics, kind, outcome)
	telemetry.AddEvent(ctx, "record resolved",
		telemetry.Kind(kind.String()), telemetry.SourceID(rec.SourceID), telemetry.Outcome(string(outcome)))
	return nil
}

// dumpMappings logs every resolved record of t at debug level.
func (s *Session) dumpMappings(ctx context.Context, t *Table) {
	if !logger.Enabled(slog.LevelDebug) {
		return
	}
	for _, r := range t.records {
		logger.DebugCtx(ctx, fmt.Sprintf("%s %d (%s) maps to %d", t.kind, r.SourceID, r.Name, r.ResolvedID))
	}
}

// ApplyToBatch rewrites the owner and group of every entry in list to
// local ids.
//
// Owners are only rewritten for a superuser process with PreserveUID, and
// owner 0 is left alone. Groups are rewritten with PreserveGID; group 0 is
// never looked up or checked. For a process without superuser privilege a
// group it does not belong to becomes NoGroup.
func (s *Session) ApplyToBatch(ctx context.Context, list *filelist.List) (ApplyResult, error) {
	res := ApplyResult{Files: list.Len()}

	mapUID := s.superuser && s.Enabled(KindUser)
	mapGID := s.Enabled(KindGroup)
	if !mapUID && !mapGID {
		res.Skipped = true
		return res, nil
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanApplyBatch,
		telemetry.SessionID(s.id), telemetry.Files(list.Len()), telemetry.Superuser(s.superuser))
	defer span.End()
	ctx = s.logContext(ctx, roleReceiver)

	start := time.Now()
	uidHits, uidMisses := s.in[KindUser].MemoStats()
	gidHits, gidMisses := s.in[KindGroup].MemoStats()

	for _, e := range list.Entries {
		if mapUID && e.UID != RootID {
			if uid := s.matchUID(e.UID); uid != e.UID {
				e.UID = uid
				res.UIDChanged++
			}
		}
		if mapGID && (s.superuser || e.GID != RootID) {
			gid, err := s.matchGID(ctx, e.GID)
			if err != nil {
				telemetry.RecordError(ctx, err)
				return res, err
			}
			if gid != e.GID {
				if gid == NoGroup {
					res.GIDWithheld++
				}
				e.GID = gid
				res.GIDChanged++
			}
		}
	}

	if mapUID {
		h, m := s.in[KindUser].MemoStats()
		observeApply(s.opts.Metrics, KindUser, res.UIDChanged, h-uidHits, m-uidMisses)
	}
	if mapGID {
		h, m := s.in[KindGroup].MemoStats()
		observeApply(s.opts.Metrics, KindGroup, res.GIDChanged, h-gidHits, m-gidMisses)
	}

	logger.DebugCtx(ctx, "Ownership mapped",
		logger.KeyCount, res.Files,
		"uid_changed", res.UIDChanged,
		"gid_changed", res.GIDChanged,
		"gid_withheld", res.GIDWithheld,
		logger.KeyDurationMs, logger.Duration(start))
	return res, nil
}

// MatchUID returns the local uid for a peer uid. Unknown uids are returned
// unchanged.
func (s *Session) MatchUID(uid uint32) uint32 {
	return s.matchUID(uid)
}

// MatchGID returns the local gid for a peer gid. Unknown gids are returned
// unchanged if the process may adopt them, NoGroup otherwise. Group 0 is
// returned unchanged.
func (s *Session) MatchGID(ctx context.Context, gid uint32) (uint32, error) {
	return s.matchGID(ctx, gid)
}

func (s *Session) matchUID(uid uint32) uint32 {
	out, _ := s.in[KindUser].Match(uid)
	return out
}

func (s *Session) matchGID(ctx context.Context, gid uint32) (uint32, error) {
	if gid == RootID {
		return RootID, nil
	}
	out, found := s.in[KindGroup].Match(gid)
	if found {
		return out, nil
	}
	return s.resolver.adoptGroup(ctx, gid)
}

// Reset discards all tables and cached membership so the session can run
// a new exchange. The session gets a fresh id.
func (s *Session) Reset() {
	for _, k := range Kinds {
		s.out[k].reset()
		s.in[k].reset()
	}
	s.membership.reset()
	s.decoded = false
	s.id = uuid.NewString()
}

func (s *Session) logContext(ctx context.Context, role string) context.Context {
	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = logger.NewLogContext(s.id, role)
	} else {
		lc = lc.Clone()
		lc.SessionID = s.id
		lc.Role = role
	}
	if tid := telemetry.TraceID(ctx); tid != "" {
		lc.TraceID = tid
	}
	return logger.WithContext(ctx, lc)
}
