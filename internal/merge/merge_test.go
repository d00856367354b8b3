package merge

import (
	"encoding/json"
	"testing"

	"screen-parser/internal/element"
	perrors "screen-parser/internal/errors"
	"screen-parser/pkg/geometry"
)

func compoDet(shape element.Shape, boxes ...geometry.BoundingBox) *element.CompoDetection {
	det := &element.CompoDetection{ImgShape: shape}
	for i, b := range boxes {
		det.Compos = append(det.Compos, &element.Element{
			ID:          i,
			Class:       element.ClassCompo,
			BoundingBox: b,
		})
	}
	return det
}

func textDet(shape element.Shape, texts ...*element.Text) *element.TextDetection {
	return &element.TextDetection{ImgShape: shape, Texts: texts}
}

func text(box geometry.BoundingBox, content string) *element.Text {
	return &element.Text{BoundingBox: box, Content: content}
}

func TestCombineBasic(t *testing.T) {
	shape := element.NewShape(100, 100)
	compos := compoDet(shape, geometry.NewBoundingBox(10, 10, 60, 60))
	texts := textDet(shape, text(geometry.NewBoundingBox(20, 20, 40, 30), "OK"))

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if result.ImgShape != shape {
		t.Errorf("ImgShape = %v, want %v", result.ImgShape, shape)
	}
	if len(result.Compos) != 2 {
		t.Fatalf("got %d elements, want 2", len(result.Compos))
	}

	compo, txt := result.Compos[0], result.Compos[1]
	if compo.ID != 0 || txt.ID != 1 {
		t.Errorf("ids = %d, %d, want 0, 1", compo.ID, txt.ID)
	}
	if compo.Class != element.ClassCompo || txt.Class != element.ClassText {
		t.Errorf("classes = %s, %s", compo.Class, txt.Class)
	}
	if txt.Content != "OK" {
		t.Errorf("text content = %q, want %q", txt.Content, "OK")
	}
	if txt.Parent == nil || *txt.Parent != 0 {
		t.Errorf("text parent = %v, want 0", txt.Parent)
	}
	if len(compo.Children) != 1 || compo.Children[0] != 1 {
		t.Errorf("compo children = %v, want [1]", compo.Children)
	}
}

func TestCombineNoRescaleWhenShapesEqual(t *testing.T) {
	shape := element.NewShape(123, 457)
	box := geometry.NewBoundingBox(17, 23, 401, 99)
	texts := textDet(shape, text(box, "verbatim"))

	result, err := Combine(compoDet(shape), texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if got := result.Compos[0].BoundingBox; got != box {
		t.Errorf("text box = %s, want %s unchanged", got, box)
	}
}

func TestCombineRescalesTextCoordinates(t *testing.T) {
	compos := compoDet(element.NewShape(100, 100))
	texts := textDet(element.NewShape(50, 50),
		text(geometry.NewBoundingBox(10, 10, 20, 20), "scaled"))

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	want := geometry.NewBoundingBox(20, 20, 40, 40)
	got := result.Compos[0]
	if got.BoundingBox != want {
		t.Errorf("scaled box = %s, want %s", got.BoundingBox, want)
	}
	if got.Width != 20 || got.Height != 20 {
		t.Errorf("stored size = %dx%d, want 20x20", got.Width, got.Height)
	}
}

func TestCombineContainmentAfterRescale(t *testing.T) {
	// The text box only falls inside the component once rescaled into the
	// component space.
	compos := compoDet(element.NewShape(100, 100), geometry.NewBoundingBox(15, 15, 45, 45))
	texts := textDet(element.NewShape(200, 200),
		text(geometry.NewBoundingBox(40, 40, 80, 80), "inside after scaling"))

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	txt := result.Compos[1]
	if txt.Parent == nil || *txt.Parent != 0 {
		t.Errorf("text parent = %v, want 0", txt.Parent)
	}
}

func TestCombineOrderingAndIDs(t *testing.T) {
	shape := element.NewShape(100, 100)
	compos := compoDet(shape,
		geometry.NewBoundingBox(0, 0, 10, 10),
		geometry.NewBoundingBox(20, 20, 30, 30),
	)
	texts := textDet(shape,
		text(geometry.NewBoundingBox(50, 50, 60, 60), "a"),
		text(geometry.NewBoundingBox(70, 70, 80, 80), "b"),
	)

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	wantClasses := []element.Class{
		element.ClassCompo, element.ClassCompo,
		element.ClassText, element.ClassText,
	}
	for i, ele := range result.Compos {
		if ele.ID != i {
			t.Errorf("element %d has id %d", i, ele.ID)
		}
		if ele.Class != wantClasses[i] {
			t.Errorf("element %d class = %s, want %s", i, ele.Class, wantClasses[i])
		}
	}
}

func TestCombineFirstContainingCompoWins(t *testing.T) {
	shape := element.NewShape(100, 100)
	// Both components contain the text; the earlier one must claim it.
	compos := compoDet(shape,
		geometry.NewBoundingBox(0, 0, 100, 100),
		geometry.NewBoundingBox(10, 10, 90, 90),
	)
	texts := textDet(shape, text(geometry.NewBoundingBox(40, 40, 60, 60), "contested"))

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	txt := result.Compos[2]
	if txt.Parent == nil || *txt.Parent != 0 {
		t.Errorf("text parent = %v, want first compo (0)", txt.Parent)
	}
	if n := len(result.Compos[1].Children); n != 0 {
		t.Errorf("second compo has %d children, want 0", n)
	}
}

func TestCombineUncontainedTextStaysTopLevel(t *testing.T) {
	shape := element.NewShape(100, 100)
	compos := compoDet(shape, geometry.NewBoundingBox(0, 0, 30, 30))
	texts := textDet(shape, text(geometry.NewBoundingBox(50, 50, 70, 70), "loose"))

	result, err := Combine(compos, texts)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if result.Compos[1].Parent != nil {
		t.Errorf("uncontained text got parent %d", *result.Compos[1].Parent)
	}
	if len(result.Compos[0].Children) != 0 {
		t.Errorf("compo children = %v, want empty", result.Compos[0].Children)
	}
}

func TestCombineCompoChildrenAlwaysPresent(t *testing.T) {
	shape := element.NewShape(100, 100)
	result, err := Combine(compoDet(shape, geometry.NewBoundingBox(0, 0, 10, 10)), textDet(shape))
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if result.Compos[0].Children == nil {
		t.Fatal("compo children is nil, want empty slice")
	}

	// The JSON form must carry an explicit empty array.
	data, err := json.Marshal(result.Compos[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	children, ok := doc["children"].([]any)
	if !ok {
		t.Fatalf("children field = %v, want array", doc["children"])
	}
	if len(children) != 0 {
		t.Errorf("children = %v, want empty", children)
	}
}

func TestCombineDeterministic(t *testing.T) {
	shape := element.NewShape(100, 100)
	build := func() (*element.CompoDetection, *element.TextDetection) {
		compos := compoDet(shape,
			geometry.NewBoundingBox(0, 0, 50, 50),
			geometry.NewBoundingBox(40, 40, 100, 100),
		)
		texts := textDet(element.NewShape(200, 200),
			text(geometry.NewBoundingBox(10, 10, 40, 30), "one"),
			text(geometry.NewBoundingBox(100, 100, 160, 140), "two"),
		)
		return compos, texts
	}

	c1, t1 := build()
	r1, err := Combine(c1, t1)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	c2, t2 := build()
	r2, err := Combine(c2, t2)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	j1, _ := json.Marshal(r1)
	j2, _ := json.Marshal(r2)
	if string(j1) != string(j2) {
		t.Errorf("results differ:\n%s\n%s", j1, j2)
	}
}

func TestCombineDoesNotMutateInputs(t *testing.T) {
	shape := element.NewShape(100, 100)
	compos := compoDet(shape, geometry.NewBoundingBox(10, 10, 60, 60))
	texts := textDet(shape, text(geometry.NewBoundingBox(20, 20, 40, 30), "OK"))

	before, _ := json.Marshal(compos)
	if _, err := Combine(compos, texts); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	after, _ := json.Marshal(compos)
	if string(before) != string(after) {
		t.Errorf("input mutated:\nbefore %s\nafter  %s", before, after)
	}
}

func TestCombineRejectsDegenerateShapes(t *testing.T) {
	good := element.NewShape(100, 100)

	tests := []struct {
		name   string
		compos *element.CompoDetection
		texts  *element.TextDetection
	}{
		{"zero text height", compoDet(good), textDet(element.Shape{0, 50, 3})},
		{"zero text width", compoDet(good), textDet(element.Shape{50, 0, 3})},
		{"zero compo height", compoDet(element.Shape{0, 100, 3}), textDet(good)},
		{"nil compos", nil, textDet(good)},
		{"nil texts", compoDet(good), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Combine(tt.compos, tt.texts)
			if err == nil {
				t.Fatal("Combine succeeded, want error")
			}
			code := perrors.CodeOf(err)
			if code != perrors.CodeDimensionMismatch && code != perrors.CodeDetectionUnavailable {
				t.Errorf("error code = %s", code)
			}
		})
	}
}

func TestBuildHierarchyIdempotent(t *testing.T) {
	elements := []*element.Element{
		{Class: element.ClassCompo, BoundingBox: geometry.NewBoundingBox(0, 0, 50, 50)},
		{Class: element.ClassText, BoundingBox: geometry.NewBoundingBox(10, 10, 20, 20)},
	}

	BuildHierarchy(elements)
	first, _ := json.Marshal(elements)
	BuildHierarchy(elements)
	second, _ := json.Marshal(elements)

	if string(first) != string(second) {
		t.Errorf("hierarchy changed on second pass:\n%s\n%s", first, second)
	}
}

func TestBuildHierarchyStripsStaleState(t *testing.T) {
	stale := 99
	elements := []*element.Element{
		{ID: 7, Class: element.ClassCompo, BoundingBox: geometry.NewBoundingBox(0, 0, 50, 50),
			Children: []int{1, 2, 3}},
		{ID: 8, Class: element.ClassText, BoundingBox: geometry.NewBoundingBox(60, 60, 70, 70),
			Parent: &stale},
	}

	BuildHierarchy(elements)

	if elements[0].ID != 0 || elements[1].ID != 1 {
		t.Errorf("ids = %d, %d, want 0, 1", elements[0].ID, elements[1].ID)
	}
	if len(elements[0].Children) != 0 {
		t.Errorf("stale children survived: %v", elements[0].Children)
	}
	if elements[1].Parent != nil {
		t.Errorf("stale parent survived: %d", *elements[1].Parent)
	}
}
