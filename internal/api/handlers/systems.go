package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"transit-lc/internal/api/models"
	"transit-lc/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrSystemNotFound is returned for an unknown preset ID.
var ErrSystemNotFound = errors.New("system not found")

var systemExts = []string{".yaml", ".yml", ".toml", ".json"}

// SystemStore reads preset system files from a directory.
type SystemStore struct {
	dir    string
	logger zerolog.Logger
}

func NewSystemStore(dir string, logger zerolog.Logger) *SystemStore {
	// Convert to absolute path for reliability
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &SystemStore{dir: dir, logger: logger}
}

func (s *SystemStore) Dir() string { return s.dir }

// List returns every readable preset, sorted by ID. A missing directory is
// an empty list.
func (s *SystemStore) List() ([]models.SystemInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("dir", s.dir).Msg("system directory does not exist")
			return []models.SystemInfo{}, nil
		}
		return nil, err
	}

	out := []models.SystemInfo{}
	for _, entry := range entries {
		id, ok := systemID(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		sys, err := config.LoadSystemFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("skipping invalid system file")
			continue
		}
		out = append(out, systemInfo(id, path, sys))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Load reads the preset with the given ID (file name without extension).
func (s *SystemStore) Load(id string) (config.SystemConfig, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return config.SystemConfig{}, fmt.Errorf("%w: %q", ErrSystemNotFound, id)
	}
	for _, ext := range systemExts {
		path := filepath.Join(s.dir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sys, err := config.LoadSystemFile(path)
		if err != nil {
			return config.SystemConfig{}, err
		}
		if sys.Name == "" {
			sys.Name = id
		}
		return sys, nil
	}
	return config.SystemConfig{}, fmt.Errorf("%w: %q", ErrSystemNotFound, id)
}

func systemID(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range systemExts {
		if ext == e {
			return strings.TrimSuffix(filename, filepath.Ext(filename)), true
		}
	}
	return "", false
}

func systemInfo(id, path string, sys config.SystemConfig) models.SystemInfo {
	name := sys.Name
	if name == "" {
		name = id
	}
	return models.SystemInfo{
		ID:            id,
		Name:          name,
		File:          path,
		Central:       sys.Central,
		Bodies:        sys.BodyNames(),
		LimbDarkening: sys.LimbDarkening,
	}
}

// SystemHandler handles preset system requests
type SystemHandler struct {
	store *SystemStore
}

func NewSystemHandler(store *SystemStore) *SystemHandler {
	return &SystemHandler{store: store}
}

// ListSystems handles GET /api/v1/systems
func (h *SystemHandler) ListSystems(c *gin.Context) {
	systems, err := h.store.List()
	if err != nil {
		abortError(c, http.StatusInternalServerError, "SYSTEM_DIR_ERROR", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"systems": systems})
}

// GetSystem handles GET /api/v1/systems/:id
func (h *SystemHandler) GetSystem(c *gin.Context) {
	id := c.Param("id")
	sys, err := h.store.Load(id)
	if err != nil {
		if errors.Is(err, ErrSystemNotFound) {
			abortError(c, http.StatusNotFound, "SYSTEM_NOT_FOUND", err.Error(), nil)
			return
		}
		abortError(c, http.StatusBadRequest, "INVALID_SYSTEM", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"system": sys})
}
