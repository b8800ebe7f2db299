package xmldoc

import "errors"

var errStop = errors.New("xmldoc: stop walk")

// Walk visits root and its descendants in document order and calls visit for
// every element match accepts. A nil match accepts every element. The first
// error returned by visit stops the walk and is returned.
//
// visit may change text and attributes but must not add or remove elements.
func Walk(root *Element, match Predicate, visit func(*Element) error) error {
	if root == nil {
		return nil
	}
	err := walk(root, match, visit)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func walk(e *Element, match Predicate, visit func(*Element) error) error {
	if match == nil || match(e) {
		if err := visit(e); err != nil {
			return err
		}
	}
	for _, c := range e.ChildElements() {
		if err := walk(c, match, visit); err != nil {
			return err
		}
	}
	return nil
}
