package pumproom

import "time"

// User is an authenticated PumpRoom user.
//
// A User is only ever trusted after a successful authenticate call or a
// successful token verification. Instances are produced by the client's
// Authenticate and SetUser methods; callers should treat them as read-only.
type User struct {
	// UID is the unique identifier of the user.
	UID string `json:"uid"`
	// Token is the authentication token issued for the user.
	Token string `json:"token"`
	// IsAdmin reports whether the user has admin privileges.
	IsAdmin bool `json:"is_admin"`
}

// ProviderType identifies the LMS platform hosting the integration.
// When set on Config it enables provider-specific validation.
type ProviderType string

// ProviderGetCourse enables GetCourse identifier validation: authentication
// fails fast when the LMS id is missing or still contains an unreplaced
// template placeholder.
const ProviderGetCourse ProviderType = "getcourse"

// IdentityProvider names the authentication provider that issued a user.
type IdentityProvider string

// Identity providers supported by the PumpRoom platform.
const (
	IdentityProviderTilda    IdentityProvider = "tilda"
	IdentityProviderTelegram IdentityProvider = "telegram"
)

// LMSProfile is a user profile supplied by a Learning Management System.
type LMSProfile struct {
	// ID is the unique identifier of the user within the LMS. When empty and
	// Email holds a valid address, the email is promoted to the identifier.
	ID string `json:"id,omitempty"`
	// Email optionally identifies the user when ID is not set.
	Email string `json:"email,omitempty"`
	// Name is the display name of the user.
	Name string `json:"name"`
	// PhotoURL optionally links to the user's avatar.
	PhotoURL string `json:"photo_url,omitempty"`
}

// Course describes a course enrollment inside a Tilda profile.
type Course struct {
	Alias   string    `json:"alias"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// TildaProfile is a user profile supplied by Tilda membership pages.
type TildaProfile struct {
	Login      string   `json:"login"`
	Name       string   `json:"name"`
	IsTutor    bool     `json:"istutor"`
	Lang       string   `json:"lang"`
	ProjectID  string   `json:"projectid"`
	Courses    []Course `json:"courses,omitempty"`
	MemberLogo string   `json:"memberlogo,omitempty"`
}

// LMSContext carries course tracking identifiers applied to all API calls.
type LMSContext struct {
	KitID     string `json:"kitId,omitempty"`
	ProgramID string `json:"programId,omitempty"`
	LessonID  string `json:"lessonId,omitempty"`
}

// lmsContextAPI is the snake_case wire form of LMSContext.
type lmsContextAPI struct {
	KitID     string `json:"kit_id,omitempty"`
	ProgramID string `json:"program_id,omitempty"`
	LessonID  string `json:"lesson_id,omitempty"`
}

func (c *LMSContext) api() *lmsContextAPI {
	if c == nil {
		return nil
	}
	return &lmsContextAPI{KitID: c.KitID, ProgramID: c.ProgramID, LessonID: c.LessonID}
}

// AuthOptions selects the profile used for authentication. At most one of
// LMS and Profile is normally set; both may be nil for anonymous realms.
type AuthOptions struct {
	// LMS holds the LMS profile, if authenticating via an LMS.
	LMS *LMSProfile
	// Profile holds the Tilda profile, if authenticating via Tilda.
	Profile *TildaProfile
}

// InstanceContext identifies one embedded PumpRoom frame.
type InstanceContext struct {
	// InstanceUID is the unique identifier of the frame instance.
	InstanceUID string `json:"instanceUid"`
	// RepoName is the repository backing the instance.
	RepoName string `json:"repoName"`
	// TaskName is the task presented by the instance.
	TaskName string `json:"taskName"`
	// Realm scopes the instance.
	Realm string `json:"realm"`
	// Tags optionally annotate the instance.
	Tags string `json:"tags,omitempty"`
}

// TaskStatus is the loading status reported by an embedded frame.
type TaskStatus string

// Task statuses reported via reportStatus messages.
const (
	TaskStatusLoading TaskStatus = "loading"
	TaskStatusReady   TaskStatus = "ready"
	TaskStatusError   TaskStatus = "error"
)

// SubmissionStatus is the outcome of a task submission.
type SubmissionStatus string

// Submission outcomes.
const (
	SubmissionSuccess       SubmissionStatus = "success"
	SubmissionFail          SubmissionStatus = "fail"
	SubmissionInternalError SubmissionStatus = "internal_error"
)

// TaskDetails describes a task presented by an embedded frame.
type TaskDetails struct {
	UID         string `json:"uid"`
	Description string `json:"description,omitempty"`
}

// SubmissionResult describes the outcome of one task submission.
type SubmissionResult struct {
	TaskUID       string           `json:"taskUid"`
	SubmissionUID string           `json:"submissionUid"`
	Status        SubmissionStatus `json:"status"`
	Message       string           `json:"message,omitempty"`
	Stdout        string           `json:"stdout,omitempty"`
}

// EnvironmentData is passed to the init callback after a frame announces
// itself via a getEnvironment message.
type EnvironmentData struct {
	InstanceContext InstanceContext `json:"instanceContext"`
}

// LoadedTaskData is passed to the task-loaded and task-submitted callbacks.
type LoadedTaskData struct {
	InstanceContext InstanceContext `json:"instanceContext"`
	Task            TaskDetails     `json:"task"`
}

// ResultData is passed to the result-ready callback.
type ResultData struct {
	InstanceContext InstanceContext  `json:"instanceContext"`
	Result          SubmissionResult `json:"result"`
}

// Environment is the payload of a setEnvironment reply sent to a frame.
type Environment struct {
	// PageURL is the normalized URL of the hosting page.
	PageURL string `json:"pageURL"`
	// SDKVersion is the version of this SDK.
	SDKVersion string `json:"sdkVersion"`
}

// FullscreenParameters is the payload of a toggleFullscreen message.
type FullscreenParameters struct {
	FullscreenState bool `json:"fullscreenState"`
}

// StateDataType describes the dynamic type of a stored state value.
type StateDataType string

// State value types reported by the backend.
const (
	StateTypeBool StateDataType = "bool"
	StateTypeInt  StateDataType = "int"
	StateTypeStr  StateDataType = "str"
	StateTypeNull StateDataType = "null"
)

// State is a named value persisted through the tracker endpoints.
// Value must be JSON-serializable; nil clears the state.
type State struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// StateOutput is a state returned by the backend, annotated with its type.
type StateOutput struct {
	State
	DataType StateDataType `json:"data_type,omitempty"`
}

// GetStatesResponse is returned by FetchStates.
type GetStatesResponse struct {
	States []StateOutput `json:"states"`
}

// SetStatesResponse is returned by StoreStates and ClearStates.
type SetStatesResponse struct {
	Error string `json:"error,omitempty"`
}

// TaskData describes an auxiliary course task.
type TaskData struct {
	UID      string `json:"uid"`
	TaskName string `json:"task_name"`
	RepoName string `json:"repo_name"`
	Realm    string `json:"realm"`
}

// CourseData describes the course bound to the current page.
type CourseData struct {
	UID            string    `json:"uid"`
	VisibleName    string    `json:"visible_name"`
	URL            string    `json:"url"`
	IsPaid         bool      `json:"is_paid"`
	StudentChatURL string    `json:"student_chat_url,omitempty"`
	HelperTask     *TaskData `json:"helper_task"`
	VoteTask       *TaskData `json:"vote_task"`
}

// LoadCourseDataOutput is returned by LoadCourseData. Course is nil when no
// course is bound to the page.
type LoadCourseDataOutput struct {
	Course *CourseData `json:"course"`
}

// CourseDataCallback receives course data during LoadCourseData, first from
// the local cache (when present) and then from the backend.
type CourseDataCallback func(LoadCourseDataOutput)

// Lifecycle callback signatures. Callbacks are invoked fire-and-forget: the
// router never waits for them and a panicking callback cannot break message
// dispatch.
type (
	// OnInitCallback runs after a frame announces itself.
	OnInitCallback func(EnvironmentData)
	// OnTaskLoadedCallback runs when a frame reports a loaded task.
	OnTaskLoadedCallback func(LoadedTaskData)
	// OnTaskSubmittedCallback runs when a frame reports a submitted task.
	OnTaskSubmittedCallback func(LoadedTaskData)
	// OnResultReadyCallback runs when a submission result is ready.
	OnResultReadyCallback func(ResultData)
)
