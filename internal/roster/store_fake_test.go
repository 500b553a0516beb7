package roster

import (
	"sort"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// fakeStore implementa Store en memoria para probar el motor sin Postgres.
type fakeStore struct {
	posts       map[int64]*domain.Post
	patterns    map[string]*domain.Pattern
	series      []*domain.Series
	cells       map[string]*domain.DayCell
	assignments map[string]*domain.SlotAssignment
	executions  []*domain.ExecutionRecord
	holidays    map[string]string
	guards      map[int64]string

	nextSeriesID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:       make(map[int64]*domain.Post),
		patterns:    make(map[string]*domain.Pattern),
		cells:       make(map[string]*domain.DayCell),
		assignments: make(map[string]*domain.SlotAssignment),
		holidays:    make(map[string]string),
		guards:      make(map[int64]string),
	}
}

func (f *fakeStore) GetPost(postID int64) (*domain.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

func (f *fakeStore) GetActivePosts(installationID int64) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0)
	for _, post := range f.posts {
		if post.InstallationID == installationID && post.IsActive {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (f *fakeStore) GetPattern(code string) (*domain.Pattern, error) {
	if pattern, ok := f.patterns[code]; ok {
		return pattern, nil
	}
	for _, fallback := range domain.DefaultPatterns() {
		if fallback.Code == code {
			return fallback, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) GetActiveSeries(postID int64, slotNumber int32, date time.Time) (*domain.Series, error) {
	var found *domain.Series
	for _, s := range f.series {
		if s.PostID == postID && s.SlotNumber == slotNumber && s.ActiveOn(date) {
			if found == nil || s.StartDate.After(found.StartDate) {
				found = s
			}
		}
	}
	return found, nil
}

func (f *fakeStore) GetSeriesOverlapping(installationID int64, from, to time.Time) ([]*domain.Series, error) {
	result := make([]*domain.Series, 0)
	for _, s := range f.series {
		post, ok := f.posts[s.PostID]
		if !ok || post.InstallationID != installationID {
			continue
		}
		if s.StartDate.After(to) {
			continue
		}
		if s.EndDate != nil && s.EndDate.Before(from) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (f *fakeStore) truncateActive(postID int64, slotNumber int32, date time.Time) {
	end := date.AddDate(0, 0, -1)
	for _, s := range f.series {
		if s.PostID == postID && s.SlotNumber == slotNumber && (s.EndDate == nil || !s.EndDate.Before(date)) {
			e := end
			s.EndDate = &e
		}
	}
}

func (f *fakeStore) PaintSeries(series *domain.Series, cells []*domain.DayCell) error {
	f.truncateActive(series.PostID, series.SlotNumber, series.StartDate)

	f.nextSeriesID++
	series.ID = f.nextSeriesID
	series.CreatedAt = time.Now()
	f.series = append(f.series, series)

	if len(cells) > 0 {
		first := cells[0].Date
		last := cells[len(cells)-1].Date
		for key, cell := range f.cells {
			if cell.PostID == series.PostID && cell.SlotNumber == series.SlotNumber &&
				!cell.Date.Before(first) && !cell.Date.After(last) && !cell.Manual {
				delete(f.cells, key)
			}
		}
		for _, cell := range cells {
			key := cellKey(cell.PostID, cell.SlotNumber, cell.Date)
			if _, ok := f.cells[key]; ok {
				// queda una celda manual en esa fecha: se conserva
				continue
			}
			c := *cell
			f.cells[key] = &c
		}
	}
	return nil
}

func (f *fakeStore) TruncateSeriesFrom(postID int64, slotNumber int32, date time.Time) (int64, error) {
	f.truncateActive(postID, slotNumber, date)

	var removed int64
	for key, cell := range f.cells {
		if cell.PostID == postID && cell.SlotNumber == slotNumber && !cell.Date.Before(date) {
			delete(f.cells, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) GetDayCell(postID int64, slotNumber int32, date time.Time) (*domain.DayCell, error) {
	cell, ok := f.cells[cellKey(postID, slotNumber, date)]
	if !ok {
		return nil, nil
	}
	return cell, nil
}

func (f *fakeStore) GetDayCellsInRange(installationID int64, from, to time.Time) ([]*domain.DayCell, error) {
	cells := make([]*domain.DayCell, 0)
	for _, cell := range f.cells {
		post, ok := f.posts[cell.PostID]
		if !ok || post.InstallationID != installationID {
			continue
		}
		if cell.Date.Before(from) || cell.Date.After(to) {
			continue
		}
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Date.Before(cells[j].Date) })
	return cells, nil
}

func (f *fakeStore) CountDayCellsInRange(installationID int64, from, to time.Time) (int64, error) {
	cells, _ := f.GetDayCellsInRange(installationID, from, to)
	return int64(len(cells)), nil
}

func (f *fakeStore) UpsertDayCell(cell *domain.DayCell) error {
	c := *cell
	f.cells[cellKey(cell.PostID, cell.SlotNumber, cell.Date)] = &c
	return nil
}

func (f *fakeStore) DeleteDayCell(postID int64, slotNumber int32, date time.Time) (bool, error) {
	key := cellKey(postID, slotNumber, date)
	if _, ok := f.cells[key]; !ok {
		return false, nil
	}
	delete(f.cells, key)
	return true, nil
}

func (f *fakeStore) RegenerateMonth(installationID int64, from, to time.Time, cells []*domain.DayCell) error {
	for key, cell := range f.cells {
		post, ok := f.posts[cell.PostID]
		if !ok || post.InstallationID != installationID {
			continue
		}
		if cell.Date.Before(from) || cell.Date.After(to) {
			continue
		}
		delete(f.cells, key)
	}
	for _, cell := range cells {
		c := *cell
		f.cells[cellKey(cell.PostID, cell.SlotNumber, cell.Date)] = &c
	}
	return nil
}

func (f *fakeStore) GetSlotAssignment(postID int64, slotNumber int32) (*domain.SlotAssignment, error) {
	assignment, ok := f.assignments[slotKey(postID, slotNumber)]
	if !ok {
		return nil, nil
	}
	return assignment, nil
}

func (f *fakeStore) GetSlotAssignments(installationID int64) ([]*domain.SlotAssignment, error) {
	assignments := make([]*domain.SlotAssignment, 0)
	for _, assignment := range f.assignments {
		post, ok := f.posts[assignment.PostID]
		if !ok || post.InstallationID != installationID {
			continue
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

func (f *fakeStore) GetExecutionRecords(installationID int64, from, to time.Time) ([]*domain.ExecutionRecord, error) {
	records := make([]*domain.ExecutionRecord, 0)
	for _, record := range f.executions {
		post, ok := f.posts[record.PostID]
		if !ok || post.InstallationID != installationID {
			continue
		}
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (f *fakeStore) GetHolidays(year int) (map[string]string, error) {
	return f.holidays, nil
}

func (f *fakeStore) GetGuardNames(ids []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, id := range ids {
		if name, ok := f.guards[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

// fakePublisher acumula los eventos publicados.
type fakePublisher struct {
	events []*domain.RosterEvent
}

func (p *fakePublisher) Publish(event *domain.RosterEvent) error {
	p.events = append(p.events, event)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Roster.HorizonDays = 60
	cfg.Roster.MinYear = 2000
	cfg.Roster.MaxYear = 2100
	return cfg
}

func newTestEngine(store *fakeStore) (*Engine, *fakePublisher) {
	publisher := &fakePublisher{}
	return NewEngine(testConfig(), store, NoopLocker{}, publisher), publisher
}

func dayPost(id, installationID int64, requiredSlots int32) *domain.Post {
	return &domain.Post{
		ID:             id,
		InstallationID: installationID,
		Name:           "Control de accesos",
		ShiftStart:     "06:00:00",
		ShiftEnd:       "18:00:00",
		RequiredSlots:  requiredSlots,
		Weekdays:       []int32{1, 2, 3, 4, 5, 6, 7},
		IsActive:       true,
	}
}

func nightPost(id, installationID int64, requiredSlots int32) *domain.Post {
	return &domain.Post{
		ID:             id,
		InstallationID: installationID,
		Name:           "Vigilancia perimetral (noche)",
		ShiftStart:     "18:00:00",
		ShiftEnd:       "06:00:00",
		RequiredSlots:  requiredSlots,
		Weekdays:       []int32{1, 2, 3, 4, 5, 6, 7},
		IsActive:       true,
	}
}
