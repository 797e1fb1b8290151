package worker

import (
	"context"

	"github.com/yanryp/servicedesk-sub004/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher
// and starts delivering in the background until ctx is done.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	go notificationService.Run(ctx)
}
