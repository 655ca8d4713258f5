package config

const (
	// MaxTitleLength is the maximum length for document and folder titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// MaxTreeDepth bounds the upward parent walk when computing a node's
	// level. A self-referencing or cyclic parent_folder_id chain terminates
	// at this depth instead of looping.
	MaxTreeDepth = 32

	// MaxUploadBytes caps a single document upload.
	MaxUploadBytes = 50 << 20

	// MaxNotificationLimit caps one page of the notification list.
	MaxNotificationLimit = 200
)
