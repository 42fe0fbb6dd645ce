package client

// Severity classifies a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives user-visible events from the orchestrator. Implementations
// typically surface them as toasts or banners.
type Notifier interface {
	Notify(severity Severity, title, message string)
}

// Renderer is told to redraw the pending-items view after every store
// mutation. It always receives the store's current contents, never an
// intermediate state.
type Renderer interface {
	Render(items []Item)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Severity, string, string) {}

// NopRenderer ignores redraw requests.
type NopRenderer struct{}

func (NopRenderer) Render([]Item) {}
