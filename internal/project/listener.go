package project

// Listener receives the engine notifications. Calls happen synchronously on
// the goroutine that triggered the transition, after the state is persisted.
type Listener interface {
	// OnTaskComplete is called once per finalized task, completed or skipped.
	OnTaskComplete(result ProjectTaskResult)
	// OnProjectComplete is called once when the project reaches its summary.
	OnProjectComplete(record ProjectRecord)
	// OnOvertime is called once per task, when its countdown runs out.
	OnOvertime(task ProjectTask)
}

// NoopListener ignores every notification.
var NoopListener Listener = noopListener{}

type noopListener struct{}

func (noopListener) OnTaskComplete(ProjectTaskResult) {}
func (noopListener) OnProjectComplete(ProjectRecord)  {}
func (noopListener) OnOvertime(ProjectTask)           {}

// Listeners fans out notifications to all its members in order.
type Listeners []Listener

func (ls Listeners) OnTaskComplete(r ProjectTaskResult) {
	for _, l := range ls {
		l.OnTaskComplete(r)
	}
}

func (ls Listeners) OnProjectComplete(r ProjectRecord) {
	for _, l := range ls {
		l.OnProjectComplete(r)
	}
}

func (ls Listeners) OnOvertime(t ProjectTask) {
	for _, l := range ls {
		l.OnOvertime(t)
	}
}
