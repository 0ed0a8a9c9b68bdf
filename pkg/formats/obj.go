package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/meshveil/pkg/math"
)

// OBJ format errors.
var (
	ErrInvalidOBJIndex = errors.New("invalid OBJ index")
	ErrInvalidOBJFace  = errors.New("OBJ face needs at least 3 vertices")
	ErrMalformedOBJ    = errors.New("malformed OBJ line")
)

// OBJCorner references the attributes of one face corner. Indices are zero-based;
// -1 marks an absent attribute.
type OBJCorner struct {
	V, VT, VN int
}

// OBJFace is a polygon of three or more corners.
type OBJFace struct {
	Corners []OBJCorner
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Name      string      // First object or group name
	Positions []math.Vec3 // v
	UVs       []math.Vec2 // vt
	Normals   []math.Vec3 // vn
	Faces     []OBJFace   // f
}

// ParseOBJ parses OBJ data from a byte slice.
// Materials, smoothing groups and free-form geometry are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v math.Vec3
			v, err = parseVec3(fields[1:])
			obj.Positions = append(obj.Positions, v)
		case "vn":
			var v math.Vec3
			v, err = parseVec3(fields[1:])
			obj.Normals = append(obj.Normals, v)
		case "vt":
			var v math.Vec2
			v, err = parseVec2(fields[1:])
			obj.UVs = append(obj.UVs, v)
		case "f":
			var f OBJFace
			f, err = obj.parseFace(fields[1:])
			obj.Faces = append(obj.Faces, f)
		case "o", "g":
			if obj.Name == "" && len(fields) > 1 {
				obj.Name = strings.Join(fields[1:], " ")
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *OBJ) parseFace(fields []string) (OBJFace, error) {
	if len(fields) < 3 {
		return OBJFace{}, ErrInvalidOBJFace
	}
	face := OBJFace{Corners: make([]OBJCorner, len(fields))}
	for i, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return OBJFace{}, fmt.Errorf("%w: %q", ErrMalformedOBJ, field)
		}
		c := OBJCorner{V: -1, VT: -1, VN: -1}
		var err error
		if c.V, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
			return OBJFace{}, err
		}
		if c.V < 0 {
			return OBJFace{}, fmt.Errorf("%w: face corner %q has no position", ErrInvalidOBJIndex, field)
		}
		if len(parts) > 1 {
			if c.VT, err = resolveIndex(parts[1], len(o.UVs)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 {
			if c.VN, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
		face.Corners[i] = c
	}
	return face, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// zero-based one. An empty field yields -1.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidOBJIndex, n, count)
	}
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrMalformedOBJ, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func parseVec2(fields []string) (math.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: f[0], Y: f[1]}, nil
}

// WriteOBJ writes an indexed triangle mesh as OBJ. uvs and normals may be nil;
// otherwise they must be index-aligned with positions.
func WriteOBJ(w io.Writer, name string, positions []math.Vec3, uvs []math.Vec2, normals []math.Vec3, indices []uint32) error {
	hasUV := len(uvs) == len(positions) && len(uvs) > 0
	hasN := len(normals) == len(positions) && len(normals) > 0

	bw := bufio.NewWriter(w)
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	for _, p := range positions {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	if hasUV {
		for _, t := range uvs {
			fmt.Fprintf(bw, "vt %s %s\n", ftoa(t.X), ftoa(t.Y))
		}
	}
	if hasN {
		for _, n := range normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n.X), ftoa(n.Y), ftoa(n.Z))
		}
	}

	corner := func(i uint32) string {
		s := strconv.FormatUint(uint64(i)+1, 10)
		switch {
		case hasUV && hasN:
			return s + "/" + s + "/" + s
		case hasUV:
			return s + "/" + s
		case hasN:
			return s + "//" + s
		default:
			return s
		}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		fmt.Fprintf(bw, "f %s %s %s\n", corner(indices[t]), corner(indices[t+1]), corner(indices[t+2]))
	}
	return bw.Flush()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
