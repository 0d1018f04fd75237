// Package bde is the public API of the BitLocker Drive Encryption (BDE)
// read-only volume library: open a byte-addressable backing store, supply
// one unlocking credential, and read the plaintext BitLocker would present
// at any logical offset.
package bde

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/deploymenttheory/go-bde/internal/crypto"
	"github.com/deploymenttheory/go-bde/internal/device"
	"github.com/deploymenttheory/go-bde/internal/errs"
	"github.com/deploymenttheory/go-bde/internal/interfaces"
	"github.com/deploymenttheory/go-bde/internal/parsers/header"
	"github.com/deploymenttheory/go-bde/internal/parsers/metadata"
	"github.com/deploymenttheory/go-bde/internal/sectors"
	"github.com/deploymenttheory/go-bde/internal/types"
)

// ntfsSignature is the 8-byte in-memory patch applied over a Vista
// volume's boot sector once unlocked (spec.md §4.8).
var ntfsSignature = [8]byte{'N', 'T', 'F', 'S', ' ', ' ', ' ', ' '}

// Volume is an opened BDE volume. It starts out locked: only the
// metadata-derived accessors and the credential setters work until Unlock
// succeeds. Every exported method locks internally; callers never see
// Volume's mutex (spec.md §5, §7, §9).
type Volume struct {
	mu sync.RWMutex

	stream     interfaces.ByteStream
	ownsStream bool

	header *types.VolumeHeader
	blocks [3]*types.Metadata // nil entry means that redundant block failed to parse
	active *types.Metadata    // the block accessors/Unlock report against

	creds credentials
	cfg   *Config

	encCtx *crypto.EncryptionContext
	mapper *sectors.Mapper
	cache  *sectors.Cache

	locked        bool
	currentOffset int64
	volumeSize    int64

	aborted int32
}

// Open parses stream's volume header and all three redundant FVE metadata
// blocks, returning a locked Volume. At least one metadata block must
// parse successfully; the others are retained as nil and simply excluded
// from Unlock's attempt order (spec.md §4.2's redundancy model).
func Open(stream interfaces.ByteStream, cfg *Config) (*Volume, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	head := make([]byte, 512)
	if _, err := stream.ReadAt(head, 0); err != nil {
		return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("read volume header: %w", err)}
	}
	hr, err := header.NewVolumeHeaderReader(head)
	if err != nil {
		return nil, err
	}
	vh := hr.Header()

	v := &Volume{
		stream:     stream,
		header:     vh,
		cfg:        cfg,
		locked:     true,
		volumeSize: -1,
	}

	offsets := vh.MetadataOffsets()
	var firstErr error
	for i, off := range offsets {
		m, err := metadata.ReadBlockAt(stream, off, offsets)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		v.blocks[i] = m
		if v.active == nil {
			v.active = m
		}
	}
	if v.active == nil {
		if firstErr == nil {
			firstErr = &errs.FormatError{Kind: errs.Inconsistent, Field: "fve_metadata"}
		}
		return nil, firstErr
	}

	return v, nil
}

// OpenFile is a convenience wrapper around Open for a plain file or block
// device path, using internal/device's default ByteStream implementation.
func OpenFile(path string, cfg *Config) (*Volume, error) {
	f, err := device.OpenFile(path)
	if err != nil {
		return nil, &errs.IoError{Kind: errs.Backend, Err: err}
	}
	v, err := Open(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	v.ownsStream = true
	return v, nil
}

// SetPassword installs a user password as the unlocking credential.
func (v *Volume) SetPassword(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creds.setPassword(password)
}

// SetRecoveryPassword installs a 48-digit recovery password.
func (v *Volume) SetRecoveryPassword(s string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creds.setRecoveryPassword(s)
}

// SetKeys installs an explicit FVEK (and tweak key, for diffuser/XTS
// methods), bypassing VMK unwrap entirely.
func (v *Volume) SetKeys(fvek, tweak []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creds.setKeys(fvek, tweak)
}

// ReadStartupKey loads a .BEK external-key file as the unlocking
// credential.
func (v *Volume) ReadStartupKey(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creds.readStartupKey(path)
}

// Unlock attempts every credential supplied so far against each
// successfully parsed metadata block in primary/secondary/tertiary order,
// stopping at the first that yields a usable FVEK. It is idempotent: a
// second call on an already-unlocked Volume returns nil without redoing
// the work (spec.md §4.6, §5).
func (v *Volume) Unlock() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.locked {
		v.creds.wipe()
		return nil
	}

	if v.creds.hasDirectKeys {
		fvek := append([]byte(nil), v.creds.fvek...)
		tweak := append([]byte(nil), v.creds.tweak...)
		ctx, err := crypto.NewEncryptionContext(v.active.MetadataHeader.EncryptionMethod, fvek, tweak)
		if err != nil {
			zeroBytes(fvek)
			zeroBytes(tweak)
			v.creds.wipe()
			return err
		}
		v.finishUnlockLocked(v.active, ctx)
		if err := v.finalizeVolumeSizeLocked(); err != nil {
			v.abortUnlockLocked()
			return err
		}
		return nil
	}

	protectors := v.creds.protectors()

	var lastErr error
	for _, m := range v.blocks {
		if m == nil {
			continue
		}
		vmkKey, err := crypto.UnwrapVMK(m, protectors)
		if err != nil {
			lastErr = err
			continue
		}
		ctx, err := crypto.UnwrapFVEK(m, vmkKey)
		if err != nil {
			lastErr = err
			continue
		}
		v.finishUnlockLocked(m, ctx)
		if err := v.finalizeVolumeSizeLocked(); err != nil {
			v.abortUnlockLocked()
			lastErr = err
			continue
		}
		return nil
	}

	v.creds.wipe()
	if lastErr == nil {
		lastErr = errs.ErrNoKey
	}
	return lastErr
}

func (v *Volume) finishUnlockLocked(active *types.Metadata, ctx *crypto.EncryptionContext) {
	v.active = active
	v.encCtx = ctx
	v.mapper = sectors.NewMapper(v.header, &active.BlockHeader)
	v.cache = sectors.NewCache(v.cfg.SectorCacheCapacity)
	v.locked = false
	v.creds.wipe()
}

// finalizeVolumeSizeLocked reads and decrypts the volume's leading sector
// (already patched/relocated per the mapper's rules) and extracts the
// embedded NTFS volume_size field, per spec.md §3's "volume_size is
// finalized only after unlock succeeds" and §4.10. Must run only after
// finishUnlockLocked has installed the mapper, cache and encryption
// context it depends on.
func (v *Volume) finalizeVolumeSizeLocked() error {
	sector0, err := v.sectorPlaintextLocked(0)
	if err != nil {
		return err
	}
	size, err := header.ParseNTFSVolumeSize(sector0, v.header.BytesPerSector)
	if err != nil {
		return err
	}
	v.volumeSize = int64(size)
	v.header.VolumeSize = size
	return nil
}

// abortUnlockLocked rolls an in-progress unlock attempt back to the locked
// state when finalizeVolumeSizeLocked fails, so a later metadata block can
// still be tried with the same already-captured protectors.
func (v *Volume) abortUnlockLocked() {
	if v.cache != nil {
		v.cache.Close()
	}
	v.encCtx = nil
	v.mapper = nil
	v.cache = nil
	v.locked = true
}

// IsLocked reports whether Unlock has not yet succeeded.
func (v *Volume) IsLocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.locked
}

// Size returns the volume's total addressable length in bytes.
func (v *Volume) Size() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.volumeSize
}

// Offset returns the current position of the Read cursor.
func (v *Volume) Offset() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.currentOffset
}

// EncryptionMethod returns the volume's declared cipher, readable even
// while locked since it comes from the metadata header alone.
func (v *Volume) EncryptionMethod() types.EncryptionMethod {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active.MetadataHeader.EncryptionMethod
}

// VolumeIdentifier returns the volume's GUID.
func (v *Volume) VolumeIdentifier() types.GUID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active.MetadataHeader.VolumeIdentifier
}

// CreationTime returns the volume's FILETIME-derived creation timestamp.
func (v *Volume) CreationTime() types.FileTime {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active.MetadataHeader.CreationTime
}

// Description returns the volume's human-readable label, or "" if none
// was carried.
func (v *Volume) Description() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active.Description
}

// NumberOfKeyProtectors returns the count of VolumeMasterKey entries
// carried by the authoritative metadata block.
func (v *Volume) NumberOfKeyProtectors() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.active.VolumeMasterKeys)
}

// KeyProtector returns a read-only handle onto the i'th key protector,
// or an IoError::OutOfBounds error if i is out of range.
func (v *Volume) KeyProtector(i int) (KeyProtector, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i < 0 || i >= len(v.active.VolumeMasterKeys) {
		return KeyProtector{}, &errs.IoError{Kind: errs.OutOfBounds, Err: fmt.Errorf("protector index %d out of range", i)}
	}
	return KeyProtector{vmk: &v.active.VolumeMasterKeys[i]}, nil
}

// SignalAbort requests that the Read/ReadAt call in progress, or the next
// one issued, stop before its next sector and return the bytes copied so
// far with a nil error; that call clears the request, so the read after it
// proceeds normally (spec.md §7, §9).
func (v *Volume) SignalAbort() {
	atomic.StoreInt32(&v.aborted, 1)
}

func (v *Volume) clearAbort() {
	atomic.StoreInt32(&v.aborted, 0)
}

func (v *Volume) isAborted() bool {
	return atomic.LoadInt32(&v.aborted) != 0
}

// Read reads plaintext starting at the current cursor into p, advancing
// the cursor by the number of bytes read. It fails with IoError::Locked
// if the volume has not been unlocked.
func (v *Volume) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locked {
		return 0, errs.ErrLocked
	}
	n, err := v.readAtLocked(p, v.currentOffset)
	v.currentOffset += int64(n)
	return n, err
}

// ReadAt reads plaintext at off into p without moving the cursor,
// following io.ReaderAt's full-or-error-or-EOF contract, with one
// exception: a read stopped by SignalAbort returns a short count with a
// nil error.
func (v *Volume) ReadAt(p []byte, off int64) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locked {
		return 0, errs.ErrLocked
	}
	return v.readAtLocked(p, off)
}

func (v *Volume) readAtLocked(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &errs.IoError{Kind: errs.OutOfBounds, Err: fmt.Errorf("negative offset %d", off)}
	}
	if off >= v.volumeSize {
		return 0, io.EOF
	}

	sectorSize := v.mapper.SectorSize()
	total := 0
	for total < len(p) {
		pos := off + int64(total)
		if pos >= v.volumeSize {
			break
		}
		if v.isAborted() {
			v.clearAbort()
			return total, nil
		}

		sectorIndex := uint64(pos) / uint64(sectorSize)
		sectorStart := int64(sectorIndex) * int64(sectorSize)
		inSector := int(pos - sectorStart)

		plaintext, err := v.sectorPlaintextLocked(sectorIndex)
		if err != nil {
			return total, err
		}

		n := copy(p[total:], plaintext[inSector:])
		total += n
	}

	var retErr error
	if total < len(p) {
		retErr = io.EOF
	}
	return total, retErr
}

func (v *Volume) sectorPlaintextLocked(sectorIndex uint64) ([]byte, error) {
	if cached, ok := v.cache.Get(sectorIndex); ok {
		return cached, nil
	}

	plan := v.mapper.Plan(sectorIndex)

	var raw []byte
	switch plan.Kind {
	case interfaces.SectorZeroedMetadata:
		raw = make([]byte, plan.SourceLength)
	default:
		raw = make([]byte, plan.SourceLength)
		if _, err := v.stream.ReadAt(raw, plan.SourceOffset); err != nil {
			return nil, &errs.IoError{Kind: errs.Backend, Err: fmt.Errorf("read sector %d: %w", sectorIndex, err)}
		}
	}

	var plaintext []byte
	switch plan.Kind {
	case interfaces.SectorPlain, interfaces.SectorRelocatedHeader, interfaces.SectorZeroedMetadata:
		plaintext = raw
	case interfaces.SectorPlainPatched:
		applyVistaPatch(raw, v.active.BlockHeader.MFTMirrorClusterBlock)
		plaintext = raw
	case interfaces.SectorEncrypted:
		dec, err := v.encCtx.DecryptSector(uint64(plan.SourceOffset), raw)
		if err != nil {
			return nil, err
		}
		plaintext = dec
	default:
		plaintext = raw
	}

	v.cache.Put(sectorIndex, plaintext)
	return plaintext, nil
}

// applyVistaPatch rewrites the signature and MFT-mirror-cluster-block
// fields of a Vista volume's in-memory boot sector (spec.md §4.8): bytes
// [3:11] become "NTFS    " and bytes [56:64] carry the block header's
// cached mft_mirror_cluster_block value.
func applyVistaPatch(sector []byte, mftMirrorClusterBlock uint64) {
	if len(sector) < 64 {
		return
	}
	copy(sector[3:11], ntfsSignature[:])
	types.PutUint64LE(sector[56:64], mftMirrorClusterBlock)
}

// Seek repositions the Read cursor, following io.Seeker's semantics.
// SeekEnd requires the volume to be unlocked, since the volume size is
// otherwise not meaningful.
func (v *Volume) Seek(offset int64, whence int) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = v.currentOffset
	case io.SeekEnd:
		if v.locked {
			return 0, errs.ErrLocked
		}
		base = v.volumeSize
	default:
		return 0, &errs.IoError{Kind: errs.OutOfBounds, Err: fmt.Errorf("invalid whence %d", whence)}
	}

	pos := base + offset
	if pos < 0 {
		return 0, &errs.IoError{Kind: errs.OutOfBounds, Err: fmt.Errorf("negative resulting offset %d", pos)}
	}
	v.currentOffset = pos
	return pos, nil
}

// Close zeroes all credential and key material and releases the backing
// stream if Volume opened it itself (OpenFile). Close is safe to call on
// an already-closed or never-unlocked Volume.
func (v *Volume) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.creds.wipe()
	if v.cache != nil {
		v.cache.Close()
	}
	if v.encCtx != nil {
		zeroBytes(v.encCtx.FVEKKey)
		zeroBytes(v.encCtx.TweakKey)
	}
	v.encCtx = nil
	v.locked = true
	v.clearAbort()

	if v.ownsStream && v.stream != nil {
		err := v.stream.Close()
		v.stream = nil
		return err
	}
	return nil
}
