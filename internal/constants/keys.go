package constants

const (
	// Context Keys
	ContextKeyVisitorID = "visitorID"
	ContextKeySession   = "adminSession"

	// Session Keys
	SessionKeyVisitorID = "visitor_id"

	// Cookie carrying the admin session id (entry key in sessions.json).
	CookieSessionID = "session_id"

	// Collection documents in the remote store.
	CollectionPosts         = "posts.json"
	CollectionWidgets       = "widgets.json"
	CollectionSettings      = "settings.json"
	CollectionPages         = "pages.json"
	CollectionUsers         = "users.json"
	CollectionSubscribers   = "subscribers.json"
	CollectionComments      = "comments.json"
	CollectionLikes         = "likes.json"
	CollectionDomains       = "domains.json"
	CollectionNotifications = "notifications.json"
	CollectionSessions      = "sessions.json"

	// Offline store buckets.
	BucketPosts      = "posts"
	BucketComments   = "comments"
	BucketLikes      = "likes"
	BucketSyncQueue  = "syncQueue"
	BucketDeadLetter = "deadLetter"
	BucketMeta       = "meta"

	// Flat key-value tier file keys (one JSON file per bucket).
	StorageKeyPosts      = "offline-posts"
	StorageKeyComments   = "offline-comments"
	StorageKeyLikes      = "offline-likes"
	StorageKeySyncQueue  = "offline-sync-queue"
	StorageKeyDeadLetter = "offline-dead-letter"
	StorageKeyLastSync   = "offline-last-sync"

	// Sync queue operation types.
	OpCreatePost = "post"
	OpComment    = "comment"
	OpLike       = "like"
	OpUnlike     = "unlike"
)
