package toplevel

// Listener receives change notifications from a toplevel. Notifications fire
// on the compositor's main turn, after the change is committed.
type Listener interface {
	TitleChanged(t *Toplevel)
	AppIDChanged(t *Toplevel)
	GeometryChanged(t *Toplevel)
	MinSizeChanged(t *Toplevel)
	MaxSizeChanged(t *Toplevel)
	MaximizedChanged(t *Toplevel)
	FullscreenChanged(t *Toplevel)
	ActivatedChanged(t *Toplevel)
	DecorationModeChanged(t *Toplevel)
}

// ListenerFuncs adapts optional callbacks to Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	OnTitle          func(t *Toplevel)
	OnAppID          func(t *Toplevel)
	OnGeometry       func(t *Toplevel)
	OnMinSize        func(t *Toplevel)
	OnMaxSize        func(t *Toplevel)
	OnMaximized      func(t *Toplevel)
	OnFullscreen     func(t *Toplevel)
	OnActivated      func(t *Toplevel)
	OnDecorationMode func(t *Toplevel)
}

var _ Listener = ListenerFuncs{}

func call(fn func(*Toplevel), t *Toplevel) {
	if fn != nil {
		fn(t)
	}
}

func (f ListenerFuncs) TitleChanged(t *Toplevel)          { call(f.OnTitle, t) }
func (f ListenerFuncs) AppIDChanged(t *Toplevel)          { call(f.OnAppID, t) }
func (f ListenerFuncs) GeometryChanged(t *Toplevel)       { call(f.OnGeometry, t) }
func (f ListenerFuncs) MinSizeChanged(t *Toplevel)        { call(f.OnMinSize, t) }
func (f ListenerFuncs) MaxSizeChanged(t *Toplevel)        { call(f.OnMaxSize, t) }
func (f ListenerFuncs) MaximizedChanged(t *Toplevel)      { call(f.OnMaximized, t) }
func (f ListenerFuncs) FullscreenChanged(t *Toplevel)     { call(f.OnFullscreen, t) }
func (f ListenerFuncs) ActivatedChanged(t *Toplevel)      { call(f.OnActivated, t) }
func (f ListenerFuncs) DecorationModeChanged(t *Toplevel) { call(f.OnDecorationMode, t) }
