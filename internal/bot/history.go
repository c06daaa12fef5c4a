package bot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"groupme-bot/internal/groupme"
)

// FetchSince pages backward through the group's history from its newest
// message down to boundary, exclusive: a message stamped at or before the
// boundary stops the walk and is not returned, so a high-water mark is never
// aggregated twice. Pagination is an explicit loop so arbitrarily long
// histories cost constant stack.
func FetchSince(ctx context.Context, client groupme.Client, groupID string, boundary time.Time) ([]groupme.Message, error) {
	ctx, span := otel.Tracer("groupme-bot/history").Start(ctx, "history.fetch")
	defer span.End()

	var collected []groupme.Message
	beforeID := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := client.ListMessages(ctx, groupID, beforeID)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return collected, nil
		}

		for _, msg := range page {
			if !msg.CreatedAt.Time().After(boundary) {
				return collected, nil
			}
			collected = append(collected, msg)
		}
		beforeID = page[len(page)-1].ID
	}
}

// FetchAll walks the entire history until the platform reports no more pages.
func FetchAll(ctx context.Context, client groupme.Client, groupID string) ([]groupme.Message, error) {
	return FetchSince(ctx, client, groupID, time.Time{})
}
