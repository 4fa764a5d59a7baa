package dbrx

import (
	"fmt"
	"strings"
)

// Snippet builders for code sent to the remote interpreter. Package names
// and R source are interpolated into Python source, so both are validated
// before interpolation. Generated snippets are never logged.

// packageNameDisallowed lists characters that could escape the quoting in a
// generated snippet.
const packageNameDisallowed = "'\"\\`$;&|\n\r\t "

func validatePackageName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("%w: package name is empty", ErrInvalidArgument)
	}
	if strings.ContainsAny(pkg, packageNameDisallowed) {
		return fmt.Errorf("%w: package name %q contains disallowed characters", ErrInvalidArgument, pkg)
	}
	return nil
}

// validateRSource rejects R code that would terminate the triple-quoted
// string it is embedded in.
func validateRSource(code string) error {
	if strings.Contains(code, "'''") {
		return fmt.Errorf("%w: R code must not contain triple quotes", ErrInvalidArgument)
	}
	return nil
}

// pythonImportProbe builds a snippet that prints Success when the module
// imports cleanly and Failure when it does not.
func pythonImportProbe(pkg string) string {
	return fmt.Sprintf(`try:
    import %s
    print("Success")
except ImportError as e:
    print("Failure")`, pkg)
}

// rInstalledProbe builds a snippet that prints TRUE when the R package is
// present and FALSE when it is not. It runs through the rpy2 bridge.
func rInstalledProbe(pkg string) string {
	return fmt.Sprintf(`import rpy2.robjects as robjects
res = robjects.r('''"%s" %%in%% rownames(installed.packages())''')
print(res.r_repr())`, pkg)
}

// pipInstallSnippet builds a snippet that installs a Python package with pip.
func pipInstallSnippet(pkg string) string {
	return fmt.Sprintf(`import subprocess
subprocess.check_output(['pip', 'install', '%s'])`, pkg)
}

// rInstallSnippet builds a snippet that installs an R package from CRAN with
// its dependencies.
func rInstallSnippet(pkg string) string {
	return fmt.Sprintf(`import subprocess
subprocess.check_output(['R', '-e', "install.packages('%s', dependencies=TRUE, repos='http://cran.rstudio.com/')"])`, pkg)
}

// rEvalSnippet wraps R source in the rpy2 bridge. The final expression is
// the R representation of the result, which the interpreter echoes back as
// the command output.
func rEvalSnippet(code string) string {
	return fmt.Sprintf(`import rpy2.robjects as robjects
res = robjects.r('''%s''')
res.r_repr()`, code)
}
