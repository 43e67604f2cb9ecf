/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package triggerproto defines the one-byte-request / three-timestamp-reply
wire protocol shared by the trigger server (package trigger/server) and
its clients (package trigger/client): opcodes, buffer sizing, and reply
framing/parsing. Keeping this in its own package (rather than letting
server and client each define their own copy) is what guarantees both
ends agree on the exact bytes on the wire.
*/
package triggerproto
