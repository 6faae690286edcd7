package mocks

import (
	"context"

	"signdesk/internal/model"
	"signdesk/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFinalizeService struct {
	mock.Mock
}

func (m *MockFinalizeService) Finalize(ctx context.Context, actor model.Actor, documentID string) (*service.FinalizeResult, error) {
	args := m.Called(ctx, actor, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FinalizeResult), args.Error(1)
}
