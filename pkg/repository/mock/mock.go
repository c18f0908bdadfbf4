package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

// Store is an in-memory repository.Store for tests. Setting Err makes every
// call fail with it.
type Store struct {
	mu            sync.Mutex
	Err           error
	Users         []models.User
	Runsheets     []models.Runsheet
	Submissions   []models.Submission
	Checks        []models.EquipmentCheck
	Overrides     map[string]json.RawMessage
	Practitioners []models.Practitioner
	Vehicles      []models.Vehicle
	Closed        bool
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{Overrides: map[string]json.RawMessage{}}
}

func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.User(nil), m.Users...), nil
}

func (m *Store) ReplaceUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Users = append([]models.User(nil), users...)
	return nil
}

func (m *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var max int64
	for _, x := range m.Users {
		max = maxID(max, x.ID)
	}
	nu := *u
	nu.ID = max + 1
	m.Users = append(m.Users, nu)
	return nu.ID, nil
}

func (m *Store) ListRunsheets(ctx context.Context) ([]models.Runsheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Runsheet(nil), m.Runsheets...), nil
}

func (m *Store) GetRunsheet(ctx context.Context, id int64) (*models.Runsheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.Runsheets {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) ReplaceRunsheets(ctx context.Context, runsheets []models.Runsheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Runsheets = append([]models.Runsheet(nil), runsheets...)
	return nil
}

func (m *Store) CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var max int64
	for _, x := range m.Submissions {
		if x.FormID == s.FormID {
			max = maxID(max, x.ID)
		}
	}
	ns := *s
	ns.ID = max + 1
	m.Submissions = append(m.Submissions, ns)
	return &ns, nil
}

func (m *Store) ListSubmissions(ctx context.Context, formID string) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.Submission{}
	for _, s := range m.Submissions {
		if s.FormID == formID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Store) GetSubmission(ctx context.Context, formID string, id int64) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, s := range m.Submissions {
		if s.FormID == formID && s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) CreateEquipmentCheck(ctx context.Context, c *models.EquipmentCheck) (*models.EquipmentCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var max int64
	for _, x := range m.Checks {
		max = maxID(max, x.ID)
	}
	nc := *c
	nc.ID = max + 1
	m.Checks = append(m.Checks, nc)
	return &nc, nil
}

func (m *Store) ListEquipmentChecks(ctx context.Context) ([]models.EquipmentCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.EquipmentCheck{}, m.Checks...), nil
}

func (m *Store) GetEquipmentCheck(ctx context.Context, id int64) (*models.EquipmentCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.Checks {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) DeleteEquipmentCheck(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for i, c := range m.Checks {
		if c.ID == id {
			m.Checks = append(m.Checks[:i], m.Checks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Store) GetOverride(ctx context.Context, formID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	raw, ok := m.Overrides[formID]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), raw...), nil
}

func (m *Store) ListOverrides(ctx context.Context) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]json.RawMessage, len(m.Overrides))
	for k, v := range m.Overrides {
		out[k] = v
	}
	return out, nil
}

func (m *Store) SetOverride(ctx context.Context, formID string, config json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Overrides == nil {
		m.Overrides = map[string]json.RawMessage{}
	}
	m.Overrides[formID] = append(json.RawMessage(nil), config...)
	return nil
}

func (m *Store) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Practitioner{}, m.Practitioners...), nil
}

func (m *Store) CreatePractitioner(ctx context.Context, p *models.Practitioner) (*models.Practitioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var max int64
	for _, x := range m.Practitioners {
		max = maxID(max, x.ID)
	}
	np := *p
	np.ID = max + 1
	m.Practitioners = append(m.Practitioners, np)
	return &np, nil
}

func (m *Store) UpdatePractitioner(ctx context.Context, id int64, patch models.PractitionerPatch) (*models.Practitioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Practitioners {
		if m.Practitioners[i].ID == id {
			patch.ApplyTo(&m.Practitioners[i])
			out := m.Practitioners[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) DeletePractitioner(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for i, p := range m.Practitioners {
		if p.ID == id {
			m.Practitioners = append(m.Practitioners[:i], m.Practitioners[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Vehicle{}, m.Vehicles...), nil
}

func (m *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var max int64
	for _, x := range m.Vehicles {
		max = maxID(max, x.ID)
	}
	nv := *v
	nv.ID = max + 1
	m.Vehicles = append(m.Vehicles, nv)
	return &nv, nil
}

func (m *Store) UpdateVehicle(ctx context.Context, id int64, patch models.VehiclePatch) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Vehicles {
		if m.Vehicles[i].ID == id {
			patch.ApplyTo(&m.Vehicles[i])
			out := m.Vehicles[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Store) DeleteVehicle(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for i, v := range m.Vehicles {
		if v.ID == id {
			m.Vehicles = append(m.Vehicles[:i], m.Vehicles[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func maxID(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
