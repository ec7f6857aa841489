package domain

type CategoryInfo struct {
	Path string `json:"path"` // Full dot path from the root
	Name string `json:"name"` // Leaf category name
}

type CompanyList struct {
	Path      string          `json:"path"`
	Companies []CompanyRecord `json:"companies"`
}

// EnumerateCategories lists every category node below root in depth-first
// pre-order, skipping company lists.
func EnumerateCategories(root *Node) []CategoryInfo {
	result := make([]CategoryInfo, 0)
	walkCategories(root, "", &result)
	return result
}

func walkCategories(node *Node, prefix string, result *[]CategoryInfo) {
	for _, key := range node.keys {
		child := node.children[key]
		if !child.IsCategory() {
			continue
		}
		path := JoinPath(prefix, key)
		*result = append(*result, CategoryInfo{Path: path, Name: key})
		walkCategories(child, path, result)
	}
}

// CompanyLists returns every company list leaf in document order.
func CompanyLists(root *Node) []CompanyList {
	result := make([]CompanyList, 0)
	walkLists(root, "", &result)
	return result
}

func walkLists(node *Node, prefix string, result *[]CompanyList) {
	for _, key := range node.keys {
		child := node.children[key]
		path := JoinPath(prefix, key)
		if child.IsCompanies() {
			*result = append(*result, CompanyList{Path: path, Companies: child.Companies()})
			continue
		}
		walkLists(child, path, result)
	}
}

// Grid is a company list split for rendering: real companies are shown as
// cards, reference entries as related category labels.
type Grid struct {
	Path      string          `json:"path"`
	Name      string          `json:"name"`
	Companies []CompanyRecord `json:"companies"`
	Related   []string        `json:"related"`
}

func BuildGrid(path string, records []CompanyRecord) Grid {
	grid := Grid{
		Path:      path,
		Name:      LastSegment(path),
		Companies: make([]CompanyRecord, 0, len(records)),
		Related:   make([]string, 0),
	}
	for _, record := range records {
		if record.IsReference() {
			grid.Related = append(grid.Related, record.See)
			continue
		}
		grid.Companies = append(grid.Companies, record)
	}
	return grid
}
