// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// RepositoryManager exposes the typed git operations a merge session needs
// (clone, branch listing, remotes, fetch, merge, conflict resolution, push)
// on top of execshell. Remote URL helpers derive repository names from clone
// sources.
package gitrepo
