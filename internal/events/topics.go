package events

// Topic constants for domain events emitted by the platform.
const (
	TopicDraftCreated       = "draft.created"
	TopicDraftUpdated       = "draft.updated"
	TopicDraftItemAdded     = "draft.item_added"
	TopicDraftItemUpdated   = "draft.item_updated"
	TopicDraftItemRemoved   = "draft.item_removed"
	TopicDraftTargetApplied = "draft.target_applied"
	TopicDraftPurged        = "draft.purged"
	TopicDiscountExpired    = "discount.expired"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicDraftCreated,
		TopicDraftUpdated,
		TopicDraftItemAdded,
		TopicDraftItemUpdated,
		TopicDraftItemRemoved,
		TopicDraftTargetApplied,
		TopicDraftPurged,
		TopicDiscountExpired,
	}
}
