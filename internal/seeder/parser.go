package seeder

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexivanou/powderscout/internal/catalog"
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/model"
)

// Parser reads an offline OpenSkiMap ski area export
type Parser struct {
	dataDir  string
	fileName string
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	return &Parser{
		dataDir:  seederCfg.DataDir,
		fileName: seederCfg.FileName,
	}
}

// Path returns the export location, preferring a zipped copy when one exists
func (p *Parser) Path() string {
	filePath := filepath.Join(p.dataDir, p.fileName)
	if strings.HasSuffix(p.fileName, ".zip") {
		return filePath
	}

	zipPath := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".zip"
	if _, err := os.Stat(zipPath); err == nil {
		return zipPath
	}
	return filePath
}

// Available reports whether an export file is present
func (p *Parser) Available() bool {
	_, err := os.Stat(p.Path())
	return err == nil
}

// ParseResorts decodes the export and applies the catalog filters
func (p *Parser) ParseResorts() ([]model.Resort, error) {
	path := p.Path()
	if strings.HasSuffix(path, ".zip") {
		return p.parseResortsFromZip(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	return p.parseResortsFromReader(file)
}

func (p *Parser) parseResortsFromZip(zipPath string) ([]model.Resort, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".geojson") || strings.HasSuffix(f.Name, ".json") {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.parseResortsFromReader(rc)
		}
	}

	return nil, fmt.Errorf("no geojson file found in zip")
}

func (p *Parser) parseResortsFromReader(reader io.Reader) ([]model.Resort, error) {
	fc, err := catalog.DecodeFeatureCollection(reader)
	if err != nil {
		return nil, err
	}
	return catalog.Normalize(fc), nil
}
