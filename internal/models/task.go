package models

// Task represents a row in the tasks table. Identity is (Username, TodoID).
type Task struct {
	Username string `json:"-" dynamodbav:"username"` // Partition key
	TodoID   string `json:"todo_id" dynamodbav:"todo_id"`
	Title    string `json:"title" dynamodbav:"title"`
	IsDone   bool   `json:"isDone" dynamodbav:"isDone"`
}

// CreateTaskRequest represents the task creation payload. Pointer fields let
// handlers tell a missing field from a zero value.
type CreateTaskRequest struct {
	TodoID   *string `json:"todo_id"`
	Title    *string `json:"title"`
	IsDone   *bool   `json:"isDone"`
	FileName string  `json:"fileName,omitempty"`
}

// CreateTaskResponse is returned on 201
type CreateTaskResponse struct {
	Task      Task   `json:"task"`
	UploadURL string `json:"upload_url,omitempty"`
	ImageKey  string `json:"image_key,omitempty"`
}

// UpdateTitleRequest represents the title edit payload
type UpdateTitleRequest struct {
	Title *string `json:"title"`
}

// ImageLink pairs an object key with a short-lived download URL
type ImageLink struct {
	TodoID string `json:"todo_id"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// UploadImageRequest asks for a pre-signed upload URL
type UploadImageRequest struct {
	FileName *string `json:"fileName"`
}

// PresignedURL is a short-lived URL for direct object store access
type PresignedURL struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"` // seconds
}
