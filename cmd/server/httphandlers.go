package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"example.com/campusfeed/internal/metrics"
	"example.com/campusfeed/internal/models"
	"example.com/campusfeed/internal/store"
	"example.com/campusfeed/internal/upload"
)

const maxBodyBytes = 1 << 20

// --- Request schemas ---

type signupRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createPostRequest struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type healthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// --- HTTP Handlers ---

// signupHandler registers a user from {"fname","lname","email","password"}.
// The email must belong to an allowed domain and must not be registered yet.
func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if !decodeBody(w, r, "http/signup", &body) {
		return
	}

	if body.FirstName == "" || body.LastName == "" || body.Email == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if !isAllowedEmailDomain(body.Email) {
		logg.Info("http/signup", "Rejected signup from outside the allowed domains")
		writeMessage(w, http.StatusBadRequest, "Email must be from tezu.ac.in or tezu.ernet.in")
		return
	}

	existing, err := s.store.FindUserByEmail(r.Context(), body.Email)
	if err != nil {
		logg.Error("http/signup", "Failed to query existing user", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}

	user, err := s.store.CreateUser(r.Context(), models.User{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		logg.Error("http/signup", "Failed to create user", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logg.Info("http/signup", "User registered with id="+user.ID)
	s.publish(r.Context(), models.ActivityEvent{Type: models.EventUserRegistered, ID: user.ID, At: user.CreatedAt})
	writeMessage(w, http.StatusCreated, "User registered successfully!")
}

// signinHandler checks {"email","password"} against the stored user.
// Unknown email and wrong password get the same answer.
func (s *Server) signinHandler(w http.ResponseWriter, r *http.Request) {
	var body signinRequest
	if !decodeBody(w, r, "http/signin", &body) {
		return
	}

	if body.Email == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := s.store.FindUserByEmail(r.Context(), body.Email)
	if err != nil {
		logg.Error("http/signin", "Failed to query user", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Plaintext comparison; passwords are stored as submitted.
	if user == nil || subtle.ConstantTimeCompare([]byte(user.Password), []byte(body.Password)) != 1 {
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	logg.Info("http/signin", "Login successful for user id="+user.ID)
	writeMessage(w, http.StatusOK, "Login successful")
}

// createPostHandler stores {"imageUrl","caption"}; both are required.
func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var body createPostRequest
	if !decodeBody(w, r, "http/post", &body) {
		return
	}

	if body.ImageURL == "" || body.Caption == "" {
		writeMessage(w, http.StatusBadRequest, "Image URL and caption are required")
		return
	}

	post, err := s.store.CreatePost(r.Context(), models.Post{ImageURL: body.ImageURL, Caption: body.Caption})
	if err != nil {
		logg.Error("http/post", "Failed to create post", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	logg.Info("http/post", "Post created with id="+post.ID)
	s.publish(r.Context(), models.ActivityEvent{Type: models.EventPostCreated, ID: post.ID, At: post.CreatedAt})
	writeMessage(w, http.StatusCreated, "Post created successfully!")
}

func (s *Server) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		logg.Error("http/posts", "Failed to fetch posts", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) listUsernamesHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListUserDisplayNames(r.Context())
	if err != nil {
		logg.Error("http/usernames", "Failed to fetch usernames", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch usernames")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// uploadHandler saves the multipart "image" field and returns where it can
// be fetched from.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.UploadMaxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	name, err := s.saver.Save(file, header)
	if err != nil {
		if errors.Is(err, upload.ErrEmptyFile) {
			writeMessage(w, http.StatusBadRequest, "Image file is required")
			return
		}
		logg.Error("http/upload", "Failed to store upload", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	logg.Info("http/upload", "Stored upload "+name)
	writeJSON(w, http.StatusCreated, uploadResponse{Filename: name, URL: "/uploads/" + name})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// readyHandler includes store connectivity.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logg.Error("http/readyz", "Store ping failed", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "degraded",
			Details: map[string]any{"store": "unreachable"},
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ready",
		Details: map[string]any{"store": "ok"},
	})
}

// publish emits an activity event; failures never affect the response.
func (s *Server) publish(ctx context.Context, ev models.ActivityEvent) {
	err := s.events.Publish(context.WithoutCancel(ctx), ev)
	metrics.RecordPublish(ev.Type, err)
	if err != nil {
		logg.Error("events", "Failed to publish "+ev.Type+" event", err)
	}
}

// --- Helpers ---

// decodeBody decodes exactly one JSON object into dst, rejecting unknown
// fields. On failure it answers 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, module string, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("trailing data after JSON object")
	}
	if err != nil {
		logg.Info(module, "Invalid request body: "+err.Error())
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logg.Error("http", "Failed to encode response", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}
