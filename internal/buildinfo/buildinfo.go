package buildinfo

const (
	ProjectName = "wordmix"
	GithubURL   = "https://github.com/bloops-games/wordmix"
)

const Graffiti = `
 __      __                .___      .__
/  \    /  \___________  __| _/_____ |__|__  ___
\   \/\/   /  _ \_  __ \/ __ |/     \|  \  \/  /
 \        (  <_> )  | \/ /_/ |  Y Y  \  |>    <
  \__/\  / \____/|__|  \____ |__|_|  /__/__/\_ \
       \/                   \/     \/         \/
`

// GreetingCLI takes the project name, version and repository url.
const GreetingCLI = "%s %s\n%s\n\n"
