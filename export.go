package spacet

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CatalogVersion is the version of the JSON catalogue format.
const CatalogVersion = "1.0"

// ExportConfig configures what gets written while simulating.
type ExportConfig struct {
	Dir       string
	Filename  string
	AsCSV     bool // poses of every tick
	Catalog   bool // bodies and their elements
	Timestamp bool // stamp the file names with the creation date
}

// IsUseless returns whether nothing would be exported.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == "" || (!c.AsCSV && !c.Catalog)
}

// path returns the file path with the provided prefix and extension.
func (c ExportConfig) path(prefix, ext string) string {
	name := fmt.Sprintf("%s-%s", prefix, c.Filename)
	if c.Timestamp {
		name += "-" + time.Now().UTC().Format("2006-01-02T15.04.05")
	}
	return filepath.Join(c.Dir, name+"."+ext)
}

// Catalog lists the bodies of a tree.
type Catalog struct {
	Version string        `json:"version"`
	Name    string        `json:"name"`
	Epoch   float64       `json:"epochJD"`
	Items   []CatalogItem `json:"items"`
}

func (c *Catalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CatalogItem is one body of a catalogue. Angles are in degrees, the period in seconds.
type CatalogItem struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	Center        string  `json:"center,omitempty"`
	Mass          float64 `json:"mass"`
	Radius        float64 `json:"radius"`
	SemiMajorAxis float64 `json:"semiMajorAxis"`
	Eccentricity  float64 `json:"eccentricity"`
	Inclination   float64 `json:"inclination"`
	Orientation   float64 `json:"orientation"`
	Period        float64 `json:"period"`
	Color         string  `json:"color"`
}

// NewCatalog lists the bodies of the provided tree in traversal order.
func NewCatalog(name string, t *Tree, epochJD float64) *Catalog {
	c := &Catalog{Version: CatalogVersion, Name: name, Epoch: epochJD}
	t.Walk(func(b *Body) error {
		item := CatalogItem{
			Name:          b.Name,
			Path:          b.path,
			Mass:          b.Mass,
			Radius:        b.Radius,
			SemiMajorAxis: b.a,
			Eccentricity:  b.e,
			Inclination:   Rad2deg(b.θ),
			Orientation:   Rad2deg(b.φ),
			Period:        b.t,
			Color:         b.Color.Hex(),
		}
		if b.mother != nil {
			item.Center = b.mother.Name
		}
		c.Items = append(c.Items, item)
		return nil
	})
	return c
}

// WriteTo writes the catalogue as indented JSON.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// WriteCatalog writes the catalogue of the tree to its file, as per the export configuration.
func WriteCatalog(conf ExportConfig, t *Tree, epochJD float64) (string, error) {
	path := conf.path("catalog", "json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := NewCatalog(conf.Filename, t, epochJD).WriteTo(f); err != nil {
		return "", err
	}
	return path, f.Close()
}

// PoseWriter writes poses as CSV records: jd, time, path, name, x, y, z.
type PoseWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewPoseWriter writes the CSV header to w.
func NewPoseWriter(w io.Writer) (*PoseWriter, error) {
	pw := &PoseWriter{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		pw.closer = c
	}
	if err := pw.w.Write([]string{"jd", "time", "path", "name", "x", "y", "z"}); err != nil {
		return nil, err
	}
	return pw, nil
}

// CreatePoseFile creates the CSV pose file, as per the export configuration.
func CreatePoseFile(conf ExportConfig) (*PoseWriter, string, error) {
	path := conf.path("poses", "csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	pw, err := NewPoseWriter(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	return pw, path, nil
}

// Write writes one record per pose.
func (pw *PoseWriter) Write(jd, now float64, poses []Pose) error {
	jdStr := strconv.FormatFloat(jd, 'f', 6, 64)
	nowStr := strconv.FormatFloat(now, 'g', -1, 64)
	for _, p := range poses {
		record := []string{
			jdStr,
			nowStr,
			p.Path,
			p.Name,
			strconv.FormatFloat(p.Position.X, 'e', 9, 64),
			strconv.FormatFloat(p.Position.Y, 'e', 9, 64),
			strconv.FormatFloat(p.Position.Z, 'e', 9, 64),
		}
		if err := pw.w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the records, and closes the underlying writer if it is a closer.
func (pw *PoseWriter) Close() error {
	pw.w.Flush()
	if err := pw.w.Error(); err != nil {
		return err
	}
	if pw.closer != nil {
		return pw.closer.Close()
	}
	return nil
}
