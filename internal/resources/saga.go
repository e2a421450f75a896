package resources

import (
	"context"
	"errors"
	"log/slog"

	"groom-admin-backend/internal/apperrors"
)

// step is one committed write of a multi-step operation. compensate undoes
// it when a later step fails; message is reported when the step itself
// fails, falling back to the backend error text.
type step struct {
	name       string
	message    string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
	// applied reports whether run wrote before it failed. Such a step is
	// compensated like a committed one.
	applied func() bool
}

type saga struct {
	name   string
	logger *slog.Logger
	steps  []step
}

// run executes the steps in order. A failing first step is a plain remote
// failure. A failing later step undoes the committed steps in reverse order
// and returns a PartialCompletionError describing what happened.
func (s saga) run(ctx context.Context) error {
	var committed []step
	for _, st := range s.steps {
		err := st.run(ctx)
		if err == nil {
			committed = append(committed, st)
			continue
		}

		message := st.message
		if message == "" {
			message = err.Error()
		}
		s.logger.ErrorContext(ctx, message, "operation", s.name, "step", st.name, "error", err)
		if st.applied != nil && st.applied() {
			committed = append(committed, st)
		}
		if len(committed) == 0 {
			return apperrors.Remote(message, err)
		}

		partial := &apperrors.PartialCompletionError{
			Message:   message,
			Committed: committed[len(committed)-1].name,
			Failed:    st.name,
			Cause:     err,
		}
		s.compensate(ctx, committed, partial)
		return partial
	}
	return nil
}

func (s saga) compensate(ctx context.Context, committed []step, partial *apperrors.PartialCompletionError) {
	cctx := context.WithoutCancel(ctx)
	ran := false
	var errs []error
	for i := len(committed) - 1; i >= 0; i-- {
		st := committed[i]
		if st.compensate == nil {
			continue
		}
		ran = true
		if err := st.compensate(cctx); err != nil {
			s.logger.ErrorContext(ctx, "compensation failed",
				"operation", s.name,
				"step", st.name,
				"error", err,
				"cause", partial.Cause,
			)
			errs = append(errs, err)
		}
	}
	partial.CompensationErr = errors.Join(errs...)
	partial.Compensated = ran && partial.CompensationErr == nil
}
