package routes

import (
	"context"
	"sync"

	"notes-app/notes/database"
	"notes-app/notes/models"
	"notes-app/notes/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) ListNotes(ctx context.Context, db *database.Database, userID uuid.UUID) ([]models.Note, error) {
	args := m.Called(userID)
	notes, _ := args.Get(0).([]models.Note)
	return notes, args.Error(1)
}

func (m *MockNoteService) GetNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) (models.Note, error) {
	args := m.Called(userID, id)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) CreateNote(ctx context.Context, db *database.Database, userID uuid.UUID, input models.NoteInput) (models.Note, error) {
	args := m.Called(userID, input)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) UpdateNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string, input models.NoteInput) (models.Note, error) {
	args := m.Called(userID, id, input)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockNoteService) DeleteNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

type MockWelcomeService struct {
	mock.Mock
}

func (m *MockWelcomeService) Send(ctx context.Context, db *database.Database, req services.WelcomeRequest) services.WelcomeResult {
	args := m.Called(req)
	return args.Get(0).(services.WelcomeResult)
}

// countingMailer records every email handed to it.
type countingMailer struct {
	mu   sync.Mutex
	sent []services.Email
}

func (m *countingMailer) Send(ctx context.Context, email services.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return uuid.NewString(), nil
}

func (m *countingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
