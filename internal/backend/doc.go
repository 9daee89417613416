// Package backend resolves and invokes the external converter executables
// (vtf2tga builds) that do the actual pixel conversion.
//
// Types:
//   - Backend (resolved executable: path, short tag, priority)
//   - Registry (ordered candidate list and base directory)
//   - Executor (runs "<exe> -i <asset>" with an optional timeout)
//   - InvocationError (non-zero exit or start failure, with captured output)
//
// Resolution happens once at startup; an empty result is fatal
// ([ErrNoBackendAvailable]). Invocation failures are per attempt and are
// handled by the caller's fallback policy.
package backend
