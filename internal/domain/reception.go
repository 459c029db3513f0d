package domain

import (
	"sort"
	"strings"
	"time"
)

// Priority уровень срочности при триаже
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Rank порядок в очереди ожидания, меньше раньше
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// ParsePriority без учёта регистра; пустая строка означает low
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityLow, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", NewValidationError("priority", "must be one of low, medium, high, urgent")
	}
	return p, nil
}

// ReceptionStatus состояние записи в приёмной
type ReceptionStatus string

const (
	ReceptionWaiting        ReceptionStatus = "waiting"
	ReceptionInConsultation ReceptionStatus = "in_consultation"
	ReceptionCompleted      ReceptionStatus = "completed"
	ReceptionCancelled      ReceptionStatus = "cancelled"
)

var receptionTransitions = map[ReceptionStatus][]ReceptionStatus{
	ReceptionWaiting:        {ReceptionInConsultation, ReceptionCancelled},
	ReceptionInConsultation: {ReceptionCompleted, ReceptionCancelled},
}

func (s ReceptionStatus) CanTransition(to ReceptionStatus) bool {
	for _, next := range receptionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseReceptionStatus(s string) (ReceptionStatus, error) {
	st := ReceptionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ReceptionWaiting, ReceptionInConsultation, ReceptionCompleted, ReceptionCancelled:
		return st, nil
	}
	return "", NewValidationError("status", "must be one of waiting, in_consultation, completed, cancelled")
}

// Terminal из completed и cancelled переходов нет
func (s ReceptionStatus) Terminal() bool {
	return s == ReceptionCompleted || s == ReceptionCancelled
}

// Patient часть карты пациента, нужная приёмной
type Patient struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ReceptionEntry пациент в очереди приёмной
type ReceptionEntry struct {
	ID             string          `json:"id"`
	PatientID      string          `json:"patient_id"`
	PatientName    string          `json:"patient_name"`
	ArrivalTime    string          `json:"arrival_time"`
	Reason         string          `json:"reason"`
	Priority       Priority        `json:"priority"`
	Status         ReceptionStatus `json:"status"`
	AssignedDoctor string          `json:"assigned_doctor,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ArrivalInput данные со стойки регистрации; PatientID пуст для пациента без карты
type ArrivalInput struct {
	PatientID   string
	PatientName string
	Reason      string
	Priority    string
	Notes       string
}

const ArrivalTimeLayout = "15:04"

// NewReceptionEntry проверяет ввод и создаёт запись в статусе waiting.
// ID назначает репозиторий.
func NewReceptionEntry(in ArrivalInput, at time.Time) (ReceptionEntry, error) {
	name := strings.TrimSpace(in.PatientName)
	if name == "" {
		return ReceptionEntry{}, NewValidationError("patient_name", "is required")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return ReceptionEntry{}, NewValidationError("reason", "is required")
	}
	prio, err := ParsePriority(in.Priority)
	if err != nil {
		return ReceptionEntry{}, err
	}
	return ReceptionEntry{
		PatientID:   strings.TrimSpace(in.PatientID),
		PatientName: name,
		ArrivalTime: at.Format(ArrivalTimeLayout),
		Reason:      reason,
		Priority:    prio,
		Status:      ReceptionWaiting,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   at,
	}, nil
}

func (e *ReceptionEntry) transition(to ReceptionStatus) error {
	if !e.Status.CanTransition(to) {
		return NewInvalidTransitionError("reception entry", e.ID, string(e.Status), string(to))
	}
	e.Status = to
	return nil
}

// AssignDoctor waiting -> in_consultation
func (e *ReceptionEntry) AssignDoctor(doctor string) error {
	if !e.Status.CanTransition(ReceptionInConsultation) {
		return NewInvalidTransitionError("reception entry", e.ID, string(e.Status), string(ReceptionInConsultation))
	}
	doctor = strings.TrimSpace(doctor)
	if doctor == "" {
		return NewValidationError("doctor", "is required")
	}
	e.AssignedDoctor = doctor
	return e.transition(ReceptionInConsultation)
}

func (e *ReceptionEntry) Complete() error { return e.transition(ReceptionCompleted) }

func (e *ReceptionEntry) Cancel() error { return e.transition(ReceptionCancelled) }

// MoveTo переводит запись в статус to теми же правилами, что AssignDoctor,
// Complete и Cancel; doctor нужен только для in_consultation
func (e *ReceptionEntry) MoveTo(to ReceptionStatus, doctor string) error {
	switch to {
	case ReceptionInConsultation:
		return e.AssignDoctor(doctor)
	case ReceptionCompleted:
		return e.Complete()
	case ReceptionCancelled:
		return e.Cancel()
	default:
		return e.transition(to)
	}
}

// DetailsInput пустые поля не меняются
type DetailsInput struct {
	Reason   string
	Priority string
	Notes    *string
}

func (e *ReceptionEntry) UpdateDetails(in DetailsInput) error {
	if e.Status != ReceptionWaiting {
		return NewInvalidTransitionError("reception entry", e.ID, string(e.Status), string(ReceptionWaiting))
	}
	next := *e
	if r := strings.TrimSpace(in.Reason); r != "" {
		next.Reason = r
	}
	if in.Priority != "" {
		p, err := ParsePriority(in.Priority)
		if err != nil {
			return err
		}
		next.Priority = p
	}
	if in.Notes != nil {
		next.Notes = strings.TrimSpace(*in.Notes)
	}
	*e = next
	return nil
}

// OrderQueue сортирует записи, данные в порядке прибытия: ожидающие первыми
// по приоритету, остальные сохраняют порядок прибытия
func OrderQueue(entries []ReceptionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		wi := entries[i].Status == ReceptionWaiting
		wj := entries[j].Status == ReceptionWaiting
		if wi != wj {
			return wi
		}
		if !wi {
			return false
		}
		return entries[i].Priority.Rank() < entries[j].Priority.Rank()
	})
}

// ReceptionStats счётчики по статусам
type ReceptionStats struct {
	Waiting        int `json:"waiting"`
	InConsultation int `json:"in_consultation"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
}

func (s *ReceptionStats) Add(status ReceptionStatus) {
	switch status {
	case ReceptionWaiting:
		s.Waiting++
	case ReceptionInConsultation:
		s.InConsultation++
	case ReceptionCompleted:
		s.Completed++
	case ReceptionCancelled:
		s.Cancelled++
	}
}
