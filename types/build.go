package types

import "fmt"

// FunctionDiscovery is one scanned test function with its expanded cases.
// An empty Cases slice means a plain, non-parameterized test.
type FunctionDiscovery struct {
	Name  string
	Line  int // 0-based line of the match start
	Cases []CaseDiscovery
}

// CaseDiscovery is one concrete parameterized test case
type CaseDiscovery struct {
	Args string
	Line int // 0-based line of the owning annotation macro
}

// FileDiscovery is the scan result for one test source file
type FileDiscovery struct {
	RelPath   string // Path relative to the project root, used for identifiers
	AbsPath   string
	Functions []FunctionDiscovery
}

// ProjectDiscovery is the scan result for one project
type ProjectDiscovery struct {
	Key   string
	Label string
	Files []FileDiscovery
}

// TestID derives the stable identifier for a non-parameterized test
func TestID(relPath, funcName string) string {
	return fmt.Sprintf("%s::%s", relPath, funcName)
}

// CaseID derives the stable identifier for a parameterized test case
func CaseID(relPath, funcName, args string) string {
	return fmt.Sprintf("%s::%s(%s)", relPath, funcName, args)
}

// BuildTree constructs a fresh test tree from discovery results. The tree is
// never patched incrementally; every discovery pass replaces it wholesale.
// With a single project the root's children are the file suites directly;
// with several projects an intermediate project suite wraps each project.
func BuildTree(projects []ProjectDiscovery) *TreeNode {
	root := &TreeNode{
		ID:    "root",
		Label: "Ceedling",
		Kind:  NodeKindRoot,
	}

	multi := len(projects) > 1
	for _, project := range projects {
		parent := root
		if multi {
			projectNode := &TreeNode{
				ID:         project.Key,
				Label:      project.Label,
				Kind:       NodeKindProject,
				ProjectKey: project.Key,
			}
			root.AddChild(projectNode)
			parent = projectNode
		}
		for _, file := range project.Files {
			parent.AddChild(buildFileSuite(project.Key, file))
		}
	}
	return root
}

func buildFileSuite(projectKey string, file FileDiscovery) *TreeNode {
	fileNode := &TreeNode{
		ID:         file.RelPath,
		Label:      file.RelPath,
		Kind:       NodeKindFile,
		Path:       file.AbsPath,
		ProjectKey: projectKey,
	}
	for _, fn := range file.Functions {
		if len(fn.Cases) == 0 {
			fileNode.AddChild(&TreeNode{
				ID:         TestID(file.RelPath, fn.Name),
				Label:      fn.Name,
				Kind:       NodeKindTest,
				Path:       file.AbsPath,
				Line:       fn.Line,
				ProjectKey: projectKey,
			})
			continue
		}

		fnNode := &TreeNode{
			ID:         TestID(file.RelPath, fn.Name),
			Label:      fn.Name,
			Kind:       NodeKindFunction,
			Path:       file.AbsPath,
			Line:       fn.Line,
			ProjectKey: projectKey,
		}
		for _, c := range fn.Cases {
			fnNode.AddChild(&TreeNode{
				ID:         CaseID(file.RelPath, fn.Name, c.Args),
				Label:      fmt.Sprintf("%s(%s)", fn.Name, c.Args),
				Kind:       NodeKindTest,
				Path:       file.AbsPath,
				Line:       c.Line,
				ProjectKey: projectKey,
			})
		}
		fileNode.AddChild(fnNode)
	}
	return fileNode
}
