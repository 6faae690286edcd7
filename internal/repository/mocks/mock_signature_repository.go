package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"signdesk/internal/model"
)

type MockSignatureRepository struct {
	mock.Mock
}

func (m *MockSignatureRepository) Create(ctx context.Context, sig *model.Signature) (*model.Signature, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) CreateWithToken(ctx context.Context, token string, now time.Time, sig *model.Signature) (*model.Signature, error) {
	args := m.Called(ctx, token, now, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) FindByID(ctx context.Context, id string) (*model.Signature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) ListByDocument(ctx context.Context, documentID string) ([]model.Signature, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) ListByDocumentAndStatus(ctx context.Context, documentID string, status model.SignatureStatus) ([]model.Signature, error) {
	args := m.Called(ctx, documentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) Transition(ctx context.Context, id string, from, to model.SignatureStatus, reason string, now time.Time) (*model.Signature, error) {
	args := m.Called(ctx, id, from, to, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
