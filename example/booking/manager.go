package main

import (
	"context"
	"log/slog"

	"github.com/tbxark/slotagent/agent"
	"github.com/tbxark/slotagent/types"
)

var _ agent.ResultManager = (*BookingManager)(nil)

type BookingManager struct{}

func (m *BookingManager) Complete(ctx context.Context, result *types.Result) error {
	slog.Info("Appointment booked", "values", types.DisplayValues(result.Values))
	return nil
}

func (m *BookingManager) Fail(ctx context.Context, result *types.Result) error {
	slog.Warn("Booking abandoned", "errors", result.Errors, "values", types.DisplayValues(result.Values))
	return nil
}
