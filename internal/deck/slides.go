package deck

// SlideID is the stable identifier of a slide. Sidebar selection maps an
// identifier straight to its position; labels are display-only.
type SlideID int

const (
	Hero SlideID = iota
	Context
	Solution
	Wokwi
	AppSheet
	AppsScript
	Looker
	Methodology
	QuantResults
	DeepDive
	Trajectories
	Qualitative
	Conclusion

	slideCount
)

// Count is the number of slides in the keynote.
const Count = int(slideCount)

var slideKeys = [Count]string{
	"hero",
	"context",
	"solution",
	"wokwi",
	"appsheet",
	"apps-script",
	"looker",
	"methodology",
	"quant-results",
	"deep-dive",
	"trajectories",
	"qualitative",
	"conclusion",
}

var slideLabels = [Count]string{
	"0. Start",
	"1. The Context",
	"2. The Solution",
	"3. Tech: Wokwi",
	"4. Tech: AppSheet",
	"5. Tech: Apps Script",
	"6. Tech: Looker",
	"7. Methodology",
	"8. Quant Results",
	"9. Deep Dive",
	"10. Trajectories",
	"11. Qualitative",
	"12. Conclusion",
}

var keyIndex = func() map[string]SlideID {
	m := make(map[string]SlideID, Count)
	for i, k := range slideKeys {
		m[k] = SlideID(i)
	}
	return m
}()

func (id SlideID) Valid() bool {
	return id >= 0 && id < slideCount
}

// Key is the URL-safe identifier, e.g. "apps-script".
func (id SlideID) Key() string {
	if !id.Valid() {
		return ""
	}
	return slideKeys[id]
}

// Label is the sidebar caption.
func (id SlideID) Label() string {
	if !id.Valid() {
		return ""
	}
	return slideLabels[id]
}

func (id SlideID) String() string {
	return id.Key()
}

// ParseSlideID resolves a key produced by Key.
func ParseSlideID(key string) (SlideID, bool) {
	id, ok := keyIndex[key]
	return id, ok
}

// AllSlides lists every identifier in presentation order.
func AllSlides() []SlideID {
	ids := make([]SlideID, Count)
	for i := range ids {
		ids[i] = SlideID(i)
	}
	return ids
}
