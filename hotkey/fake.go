package hotkey

// FakeBackend feeds scripted events into the mapper from tests.
type FakeBackend struct {
	mapper *Mapper
}

func NewFake() *FakeBackend { return &FakeBackend{} }

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) Start(m *Mapper) error {
	f.mapper = m
	return nil
}

func (f *FakeBackend) Stop() {}

// Feed forwards one raw event and reports the consume decision.
func (f *FakeBackend) Feed(ev Event) bool {
	return f.mapper.Feed(ev)
}
