package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/Faultbox/meshveil/pkg/math"
)

const mshxMagic = "MSHX"

// MSHX header flags.
const (
	MSHXFlagCompressed uint16 = 1 << 0 // Body is xz-compressed
)

// Body section flags.
const (
	mshxHasTangents uint8 = 1 << 0
	mshxHasUVs      uint8 = 1 << 1
	mshxHasSkin     uint8 = 1 << 2
)

// Limits applied to values read from a file.
const (
	maxMSHXCount = 1 << 26
	maxMSHXBody  = 1 << 30
)

// MSHX format errors.
var (
	ErrInvalidMSHXMagic       = errors.New("invalid MSHX magic: expected 'MSHX'")
	ErrUnsupportedMSHXVersion = errors.New("unsupported MSHX version")
	ErrTruncatedMSHXData      = errors.New("truncated MSHX data")
	ErrMSHXCountTooLarge      = errors.New("MSHX element count too large")
)

// MSHXVersion is the current container version.
var MSHXVersion = Version{Major: 1, Minor: 0}

// Version represents a file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// mshxHeader is the fixed-size file header.
type mshxHeader struct {
	Magic    [4]byte
	Major    uint8
	Minor    uint8
	Flags    uint16
	BodySize uint32 // Uncompressed body size
}

// MSHXBlendShape is a stored blend shape.
type MSHXBlendShape struct {
	Name           string
	FrameWeight    float32
	PositionDeltas []math.Vec3
	NormalDeltas   []math.Vec3
}

// MSHXBoneWeight binds a vertex to up to four bones.
type MSHXBoneWeight struct {
	Index  [4]uint16
	Weight [4]float32
}

// MSHXSkin is stored skinning data.
type MSHXSkin struct {
	RootBone    string
	Bones       []string
	BindPoses   []math.Mat4
	BoneWeights []MSHXBoneWeight
}

// MSHX represents a parsed MSHX mesh container.
type MSHX struct {
	Version        Version
	Name           string
	Positions      []math.Vec3
	Normals        []math.Vec3
	Tangents       []math.Vec4 // Optional
	UVs            []math.Vec2 // Optional
	Indices        []uint32
	BoundsMin      math.Vec3
	BoundsMax      math.Vec3
	NextShapeIndex uint32
	BlendShapes    []MSHXBlendShape
	Skin           *MSHXSkin // Optional
}

// ParseMSHX parses MSHX data from a byte slice.
func ParseMSHX(data []byte) (*MSHX, error) {
	var hdr mshxHeader
	if len(data) < binary.Size(hdr) {
		return nil, ErrTruncatedMSHXData
	}
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, ErrTruncatedMSHXData
	}
	if string(hdr.Magic[:]) != mshxMagic {
		return nil, ErrInvalidMSHXMagic
	}
	version := Version{Major: hdr.Major, Minor: hdr.Minor}
	if version.Major != MSHXVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMSHXVersion, version)
	}

	if hdr.BodySize > maxMSHXBody {
		return nil, fmt.Errorf("%w: body of %d bytes", ErrMSHXCountTooLarge, hdr.BodySize)
	}

	var raw []byte
	if hdr.Flags&MSHXFlagCompressed == 0 {
		if int64(hdr.BodySize) > int64(r.Len()) {
			return nil, ErrTruncatedMSHXData
		}
		off := len(data) - r.Len()
		raw = data[off : off+int(hdr.BodySize)]
	} else {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening xz body: %w", err)
		}
		// The declared size is only trusted once the data is there.
		raw, err = io.ReadAll(io.LimitReader(xr, int64(hdr.BodySize)))
		if err != nil {
			return nil, fmt.Errorf("%w: body: %v", ErrTruncatedMSHXData, err)
		}
		if len(raw) < int(hdr.BodySize) {
			return nil, ErrTruncatedMSHXData
		}
	}

	m, err := decodeMSHXBody(raw)
	if err != nil {
		return nil, err
	}
	m.Version = version
	return m, nil
}

// WriteMSHX encodes m. When compress is set the body is xz-compressed.
func WriteMSHX(w io.Writer, m *MSHX, compress bool) error {
	body, err := encodeMSHXBody(m)
	if err != nil {
		return err
	}

	hdr := mshxHeader{
		Major:    MSHXVersion.Major,
		Minor:    MSHXVersion.Minor,
		BodySize: uint32(len(body)),
	}
	copy(hdr.Magic[:], mshxMagic)
	if compress {
		hdr.Flags |= MSHXFlagCompressed
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}

	if !compress {
		_, err := w.Write(body)
		return err
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("opening xz writer: %w", err)
	}
	if _, err := xw.Write(body); err != nil {
		return err
	}
	return xw.Close()
}

func encodeMSHXBody(m *MSHX) ([]byte, error) {
	n := len(m.Positions)
	if len(m.Normals) != n {
		return nil, fmt.Errorf("MSHX normals: %d, positions: %d", len(m.Normals), n)
	}

	var flags uint8
	if len(m.Tangents) > 0 {
		flags |= mshxHasTangents
	}
	if len(m.UVs) > 0 {
		flags |= mshxHasUVs
	}
	if m.Skin != nil {
		flags |= mshxHasSkin
	}

	bw := &binWriter{}
	bw.string(m.Name)
	bw.write(flags)
	bw.write(uint32(n))
	bw.write(m.Positions)
	bw.write(m.Normals)
	if flags&mshxHasTangents != 0 {
		bw.write(m.Tangents)
	}
	if flags&mshxHasUVs != 0 {
		bw.write(m.UVs)
	}
	bw.write(uint32(len(m.Indices)))
	bw.write(m.Indices)
	bw.write(m.BoundsMin)
	bw.write(m.BoundsMax)

	bw.write(m.NextShapeIndex)
	bw.write(uint32(len(m.BlendShapes)))
	for _, bs := range m.BlendShapes {
		if len(bs.PositionDeltas) != n || len(bs.NormalDeltas) != n {
			return nil, fmt.Errorf("MSHX blend shape %s: delta count does not match %d vertices", bs.Name, n)
		}
		bw.string(bs.Name)
		bw.write(bs.FrameWeight)
		bw.write(bs.PositionDeltas)
		bw.write(bs.NormalDeltas)
	}

	if m.Skin != nil {
		bw.string(m.Skin.RootBone)
		bw.write(uint32(len(m.Skin.Bones)))
		for _, b := range m.Skin.Bones {
			bw.string(b)
		}
		bw.write(uint32(len(m.Skin.BindPoses)))
		bw.write(m.Skin.BindPoses)
		bw.write(uint32(len(m.Skin.BoneWeights)))
		bw.write(m.Skin.BoneWeights)
	}
	return bw.buf.Bytes(), bw.err
}

func decodeMSHXBody(data []byte) (*MSHX, error) {
	br := &binReader{r: bytes.NewReader(data)}
	m := &MSHX{}

	m.Name = br.string()
	var flags uint8
	br.read(&flags)
	n := br.count()
	m.Positions = readSlice[math.Vec3](br, n)
	m.Normals = readSlice[math.Vec3](br, n)
	if flags&mshxHasTangents != 0 {
		m.Tangents = readSlice[math.Vec4](br, n)
	}
	if flags&mshxHasUVs != 0 {
		m.UVs = readSlice[math.Vec2](br, n)
	}
	m.Indices = readSlice[uint32](br, br.count())
	br.read(&m.BoundsMin)
	br.read(&m.BoundsMax)

	br.read(&m.NextShapeIndex)
	shapes := br.count()
	for i := 0; i < shapes && br.err == nil; i++ {
		var bs MSHXBlendShape
		bs.Name = br.string()
		br.read(&bs.FrameWeight)
		bs.PositionDeltas = readSlice[math.Vec3](br, n)
		bs.NormalDeltas = readSlice[math.Vec3](br, n)
		m.BlendShapes = append(m.BlendShapes, bs)
	}

	if flags&mshxHasSkin != 0 {
		skin := &MSHXSkin{RootBone: br.string()}
		bones := br.count()
		for i := 0; i < bones && br.err == nil; i++ {
			skin.Bones = append(skin.Bones, br.string())
		}
		skin.BindPoses = readSlice[math.Mat4](br, br.count())
		skin.BoneWeights = readSlice[MSHXBoneWeight](br, br.count())
		m.Skin = skin
	}

	if br.err != nil {
		if errors.Is(br.err, io.EOF) || errors.Is(br.err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedMSHXData
		}
		return nil, br.err
	}
	return m, nil
}

// binWriter accumulates little-endian values and keeps the first error.
type binWriter struct {
	buf bytes.Buffer
	err error
}

func (w *binWriter) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(&w.buf, binary.LittleEndian, v)
}

func (w *binWriter) string(s string) {
	if len(s) > 0xFFFF {
		w.err = fmt.Errorf("MSHX string too long: %d bytes", len(s))
		return
	}
	w.write(uint16(len(s)))
	if w.err == nil {
		w.buf.WriteString(s)
	}
}

// binReader reads little-endian values and keeps the first error.
type binReader struct {
	r   *bytes.Reader
	err error
}

// need fails the reader when fewer than n bytes remain.
func (r *binReader) need(n int64) bool {
	if r.err == nil && n > int64(r.r.Len()) {
		r.err = ErrTruncatedMSHXData
	}
	return r.err == nil
}

func (r *binReader) read(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

func (r *binReader) count() int {
	var n uint32
	r.read(&n)
	if r.err == nil && n > maxMSHXCount {
		r.err = fmt.Errorf("%w: %d", ErrMSHXCountTooLarge, n)
	}
	if r.err != nil {
		return 0
	}
	return int(n)
}

func (r *binReader) string() string {
	var n uint16
	r.read(&n)
	if !r.need(int64(n)) {
		return ""
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = err
		return ""
	}
	return string(b)
}

func readSlice[T any](r *binReader, n int) []T {
	if r.err != nil || n == 0 {
		return nil
	}
	var zero T
	if !r.need(int64(n) * int64(binary.Size(zero))) {
		return nil
	}
	s := make([]T, n)
	r.read(s)
	return s
}
