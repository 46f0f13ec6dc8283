package core

import (
	"context"
	"fmt"

	"github.com/eskrenkovic/mediator-go"

	"go.uber.org/zap"
)

var _ mediator.PipelineBehavior = (*HandlerRecoveryBehavior)(nil)

// HandlerRecoveryBehavior converts handler panics into errors so that a
// faulty handler can never take down the connection worker that called it.
type HandlerRecoveryBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerRecoveryBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (response interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("handler panicked", zap.Any("panic", r))
			response = nil
			err = fmt.Errorf("handler panicked with: %v", r)
		}
	}()

	return next(ctx, request)
}
