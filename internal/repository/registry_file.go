package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsdesk/helpdesk-service/internal/domain"
	"github.com/opsdesk/helpdesk-service/internal/identity"
)

// TechnicianRecord is one registry file entry. Password is a plaintext development
// credential that the caller hashes before storing.
type TechnicianRecord struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Extension      string `yaml:"extension"`
	Email          string `yaml:"email"`
	Specialization string `yaml:"specialization"`
	Password       string `yaml:"password"`
	PasswordHash   string `yaml:"password_hash"`
}

type technicianFile struct {
	Technicians []TechnicianRecord `yaml:"technicians"`
}

type contactFile struct {
	Contacts map[string]string `yaml:"contacts"`
}

// LoadTechnicianFile reads a registry file. A missing file yields no records.
func LoadTechnicianFile(path string) ([]TechnicianRecord, error) {
	raw, err := readOptional(path)
	if err != nil || raw == nil {
		return nil, err
	}
	var file technicianFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(file.Technicians))
	for i, rec := range file.Technicians {
		if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("%s: technician %d needs id and name", path, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate technician id %q", path, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if !domain.Specialization(rec.Specialization).Valid() {
			return nil, fmt.Errorf("%s: technician %q has unknown specialization %q", path, rec.ID, rec.Specialization)
		}
	}
	return file.Technicians, nil
}

// Technician converts the record, leaving password hashing to the caller.
func (r TechnicianRecord) Technician() domain.Technician {
	extension := r.Extension
	if extension == "" {
		extension = r.ID
	}
	return domain.Technician{
		ID:             r.ID,
		Name:           r.Name,
		Extension:      extension,
		Email:          r.Email,
		Specialization: domain.Specialization(r.Specialization),
		PasswordHash:   r.PasswordHash,
	}
}

// LoadContactFile reads the submitter directory file. A missing file yields an empty table.
func LoadContactFile(path string) (identity.Table, error) {
	raw, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	table := identity.Table{}
	if raw == nil {
		return table, nil
	}
	var file contactFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for ext, email := range file.Contacts {
		if !identity.IsEmail(email) {
			return nil, fmt.Errorf("%s: contact %q maps to invalid email %q", path, ext, email)
		}
		table[ext] = email
	}
	return table, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
