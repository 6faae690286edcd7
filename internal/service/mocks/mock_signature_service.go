package mocks

import (
	"context"

	"signdesk/internal/model"
	"signdesk/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSignatureService struct {
	mock.Mock
}

func (m *MockSignatureService) Place(ctx context.Context, actor model.Actor, in service.PlaceInput) (*model.Signature, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureService) PlacePublic(ctx context.Context, token string, actor model.Actor, in service.PlaceInput) (*model.Signature, error) {
	args := m.Called(ctx, token, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureService) ListByDocument(ctx context.Context, actor model.Actor, documentID string) ([]model.Signature, error) {
	args := m.Called(ctx, actor, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Signature), args.Error(1)
}

func (m *MockSignatureService) UpdateStatus(ctx context.Context, actor model.Actor, id string, status model.SignatureStatus, reason string) (*model.Signature, error) {
	args := m.Called(ctx, actor, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Signature), args.Error(1)
}

func (m *MockSignatureService) Delete(ctx context.Context, actor model.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
