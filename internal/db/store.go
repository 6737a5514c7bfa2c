package db

import (
	"context"
	"errors"

	"schoolmon/internal/model"
)

var ErrNoRows = errors.New("no rows in result set")

type Credential struct {
	UserID       string
	Username     string
	PasswordHash string
}

// Store is the read-only mock data set. Every accessor returns copies so
// callers cannot mutate the reference data.
type Store struct {
	schools    []model.School
	schoolByID map[string]int
	devices    map[string][]model.Device
	credential Credential
	qrCodes    map[string]struct{}
}

func NewStore(schools []model.School, devices map[string][]model.Device, credential Credential, qrCodes []string) *Store {
	s := &Store{
		schools:    append([]model.School(nil), schools...),
		schoolByID: make(map[string]int, len(schools)),
		devices:    make(map[string][]model.Device, len(devices)),
		credential: credential,
		qrCodes:    make(map[string]struct{}, len(qrCodes)),
	}
	for i, school := range s.schools {
		s.schoolByID[school.ID] = i
	}
	for schoolID, list := range devices {
		s.devices[schoolID] = append([]model.Device(nil), list...)
	}
	for _, code := range qrCodes {
		s.qrCodes[code] = struct{}{}
	}
	return s
}

func (s *Store) CountSchools(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.schools), nil
}

// ListSchools returns the schools in [offset, offset+limit) of the ordered
// collection. Out-of-range windows, including negative offsets, yield an
// empty slice.
func (s *Store) ListSchools(ctx context.Context, offset, limit int) ([]model.School, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || limit <= 0 || offset >= len(s.schools) {
		return []model.School{}, nil
	}
	end := len(s.schools)
	if limit < end-offset {
		end = offset + limit
	}
	out := make([]model.School, end-offset)
	copy(out, s.schools[offset:end])
	return out, nil
}

func (s *Store) GetSchool(ctx context.Context, id string) (model.School, error) {
	if err := ctx.Err(); err != nil {
		return model.School{}, err
	}
	idx, ok := s.schoolByID[id]
	if !ok {
		return model.School{}, ErrNoRows
	}
	return s.schools[idx], nil
}

// ListSchoolDevices returns the devices of a school, or ErrNoRows when the
// school itself is unknown. A known school without devices yields an empty
// slice.
func (s *Store) ListSchoolDevices(ctx context.Context, schoolID string) ([]model.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := s.schoolByID[schoolID]; !ok {
		return nil, ErrNoRows
	}
	list := s.devices[schoolID]
	out := make([]model.Device, len(list))
	copy(out, list)
	return out, nil
}

func (s *Store) GetCredential(ctx context.Context, username string) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}
	if username == "" || username != s.credential.Username {
		return Credential{}, ErrNoRows
	}
	return s.credential, nil
}

func (s *Store) QRCodeExists(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.qrCodes[code]
	return ok, nil
}
